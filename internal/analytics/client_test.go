package analytics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "detail as string",
			status: 400,
			body:   `{"detail": "intervalo de datas inválido"}`,
			want:   "intervalo de datas inválido",
		},
		{
			name:   "detail as validation list",
			status: 422,
			body:   `{"detail": [{"msg": "field required"}, {"msg": "value is not a valid integer"}]}`,
			want:   "field required, value is not a valid integer",
		},
		{
			name:   "message field",
			status: 500,
			body:   `{"message": "erro interno no servidor"}`,
			want:   "erro interno no servidor",
		},
		{
			name:   "plain text body",
			status: 502,
			body:   "Bad Gateway",
			want:   "Bad Gateway",
		},
		{
			name:   "empty body falls back to status",
			status: 503,
			body:   "",
			want:   "HTTP 503",
		},
		{
			name:   "unrecognized json falls back to status",
			status: 500,
			body:   `{"error": "something"}`,
			want:   "HTTP 500",
		},
		{
			name:   "detail string wins over message",
			status: 400,
			body:   `{"detail": "detalhe", "message": "mensagem"}`,
			want:   "detalhe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractError(tt.status, []byte(tt.body))
			if got != tt.want {
				t.Errorf("extractError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientGet_UpstreamErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": [{"msg": "invalid credentials"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	_, err := c.VisaoGeral(context.Background(), "tok", VisaoGeralParams{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := domain.ErrorMessage(err); got != "invalid credentials" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "invalid credentials")
	}
	if code := domain.ErrorCode(err); code != domain.EUNAUTHORIZED {
		t.Errorf("ErrorCode() = %q, want %q", code, domain.EUNAUTHORIZED)
	}
}

func TestClientGet_QueryParamOmission(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())

	// Only granularity set; empty dates and zero meses must not appear.
	_, err := c.SerieFaturamento(context.Background(), "tok", SerieParams{Granularity: "month"})
	if err != nil {
		t.Fatalf("SerieFaturamento() error = %v", err)
	}
	if gotQuery != "granularity=month" {
		t.Errorf("query = %q, want %q", gotQuery, "granularity=month")
	}
}

func TestClientGet_BearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"collections": ["fatos_pedidos"], "fields": {}, "numeric_fields": {}, "categorical_fields": {}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	meta, err := c.Meta(context.Background(), "s3cr3t")
	if err != nil {
		t.Fatalf("Meta() error = %v", err)
	}
	if gotAuth != "Bearer s3cr3t" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer s3cr3t")
	}
	if len(meta.Collections) != 1 || meta.Collections[0] != "fatos_pedidos" {
		t.Errorf("Collections = %v, want [fatos_pedidos]", meta.Collections)
	}
}

func TestClientGet_EndpointPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{
			name: "serie faturamento",
			call: func() error { _, err := c.SerieFaturamento(ctx, "tok", SerieParams{}); return err },
			want: "/dashboard/visao-geral/serie-faturamento",
		},
		{
			name: "distribuicao vendas produto",
			call: func() error { _, err := c.DistribuicaoVendasProduto(ctx, "tok", LimitParams{}); return err },
			want: "/dashboard/visao-geral/distribuicao-vendas-produto",
		},
		{
			name: "evolucao mensal por produto",
			call: func() error { _, err := c.EvolucaoMensalPorProduto(ctx, "tok", RangeParams{}); return err },
			want: "/dashboard/produtos/evolucao-mensal-por-produto",
		},
		{
			name: "performance canal",
			call: func() error { _, err := c.PerformanceCanais(ctx, "tok", RangeParams{}); return err },
			want: "/dashboard/canais-mercados/performance-canal",
		},
		{
			name: "performance regiao",
			call: func() error { _, err := c.PerformanceRegioes(ctx, "tok", RangeParams{}); return err },
			want: "/dashboard/canais-mercados/performance-regiao",
		},
		{
			name: "clientes por segmento",
			call: func() error { _, err := c.ClientesPorSegmento(ctx, "tok", RangeParams{}); return err },
			want: "/dashboard/clientes/por-segmento",
		},
		{
			name: "evolucao custo",
			call: func() error { _, err := c.LogisticaEvolucao(ctx, "tok", SerieParams{}); return err },
			want: "/dashboard/logistica-custos/evolucao-custo",
		},
		{
			name: "logistica vs volume",
			call: func() error { _, err := c.LogisticaVsVolume(ctx, "tok", LimitParams{}); return err },
			want: "/dashboard/logistica-custos/logistica-vs-volume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if gotPath != tt.want {
				t.Errorf("path = %q, want %q", gotPath, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantToken  string
		wantErrMsg string
	}{
		{
			name:      "success",
			status:    200,
			body:      `{"access_token": "abc123"}`,
			wantToken: "abc123",
		},
		{
			name:       "success without token",
			status:     200,
			body:       `{}`,
			wantErrMsg: "Token não retornado",
		},
		{
			name:       "invalid credentials",
			status:     401,
			body:       `{"detail": "credenciais inválidas"}`,
			wantErrMsg: "credenciais inválidas",
		},
		{
			name:       "opaque failure",
			status:     500,
			body:       "",
			wantErrMsg: "Falha no login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, 5*time.Second, testLogger())
			token, err := c.Login(context.Background(), "user", "pass")

			if tt.wantErrMsg != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if got := domain.ErrorMessage(err); got != tt.wantErrMsg {
					t.Errorf("ErrorMessage() = %q, want %q", got, tt.wantErrMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestUploadExcel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error = %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile() error = %v", err)
		}
		defer f.Close()
		if hdr.Filename != "dados.xlsx" {
			t.Errorf("filename = %q, want %q", hdr.Filename, "dados.xlsx")
		}
		w.Write([]byte(`{"batch_id": "b-42", "inseridos": 10}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	resp, err := c.UploadExcel(context.Background(), "tok", "dados.xlsx", io.LimitReader(neverEnding('x'), 64))
	if err != nil {
		t.Fatalf("UploadExcel() error = %v", err)
	}
	if resp.BatchID != "b-42" {
		t.Errorf("BatchID = %q, want %q", resp.BatchID, "b-42")
	}
	if string(resp.Inseridos) != "10" {
		t.Errorf("Inseridos = %s, want 10", resp.Inseridos)
	}
}

func TestUploadExcel_OpaqueFailureKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	_, err := c.UploadExcel(context.Background(), "tok", "dados.xlsx", io.LimitReader(neverEnding('x'), 64))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := domain.ErrorMessage(err); got != "HTTP 502" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "HTTP 502")
	}
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestRevertBatch(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	if err := c.RevertBatch(context.Background(), "tok", "b-42"); err != nil {
		t.Fatalf("RevertBatch() error = %v", err)
	}
	if gotBody != `{"batch_id":"b-42"}` {
		t.Errorf("body = %s, want {\"batch_id\":\"b-42\"}", gotBody)
	}
}

func TestRevertBatch_OpaqueFailureKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, testLogger())
	err := c.RevertBatch(context.Background(), "tok", "b-42")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := domain.ErrorMessage(err); got != "HTTP 500" {
		t.Errorf("ErrorMessage() = %q, want %q", got, "HTTP 500")
	}
}
