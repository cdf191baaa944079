package handler

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/derive"
	"github.com/joaobaungartner/goncalves-frontend/internal/importer"
)

// The renderer tests parse the real template tree so a template that does
// not match its page's view data fails here, not in production.
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRendererFromFS(os.DirFS("../../web/templates"), testLogger())
	if err != nil {
		t.Fatalf("NewRendererFromFS() error = %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		t.Fatalf("Render(%q) error = %v", name, err)
	}
	return buf.String()
}

func TestRenderer_LoginPage(t *testing.T) {
	r := newTestRenderer(t)

	out := render(t, r, "auth/login", loginPageData{
		Title:     "Entrar",
		Error:     "Usuário ou senha incorretos",
		Username:  "maria",
		CSRFToken: "tok-1",
	})

	for _, want := range []string{
		"Usuário ou senha incorretos",
		`value="maria"`,
		`name="csrf_token" value="tok-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("login page missing %q", want)
		}
	}
}

func TestRenderer_VisaoGeral(t *testing.T) {
	r := newTestRenderer(t)

	fat := 7.5
	data := &visaoGeralPage{
		basePage: basePage{Title: "Visão Geral", Active: "visao-geral", CSRFToken: "tok-1"},
		Resumo: &analytics.VisaoGeralResponse{
			MesAtual:  analytics.MonthRef{Year: 2025, Month: 6},
			KPIsAtual: analytics.KPISet{FaturamentoTotal: 1234.5, VolumeKg: 12000, NumPedidos: 340, TicketMedio: 442.65},
			VariacaoPct: analytics.KPIVariation{
				Faturamento: &fat,
			},
		},
		SerieBars: []derive.Bar{
			{Label: "05/2025", Value: 1000, WidthPct: 80},
			{Label: "06/2025", Value: 1234.5, WidthPct: 100},
		},
		Distrib: []derive.Bar{{Label: "polpa", Value: 900, WidthPct: 100}},
	}

	out := render(t, r, "visao-geral", data)

	for _, want := range []string{
		"R$ 1.234,50",
		"+7,5%",
		"06/2025",
		"width: 100.0%",
		"polpa",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("visao-geral missing %q", want)
		}
	}
}

func TestRenderer_ErrorState(t *testing.T) {
	r := newTestRenderer(t)

	data := &financeiroPage{basePage: basePage{Title: "Financeiro", Active: "financeiro"}}
	data.setError("banco de dados indisponível")

	out := render(t, r, "financeiro", data)

	if !strings.Contains(out, "banco de dados indisponível") {
		t.Error("error message should render verbatim")
	}
	if strings.Contains(out, "bar-row") {
		t.Error("no data sections should render on a failed load")
	}
}

func TestRenderer_EmptyState(t *testing.T) {
	r := newTestRenderer(t)

	data := &financeiroPage{basePage: basePage{Title: "Financeiro", Active: "financeiro"}}

	out := render(t, r, "financeiro", data)

	if !strings.Contains(out, "Nenhum dado no período.") {
		t.Error("empty data should render the empty state")
	}
}

func TestRenderer_ImportarBatchBanner(t *testing.T) {
	r := newTestRenderer(t)

	data := &importarPage{basePage: basePage{Title: "Importar Planilha", Active: "importar", CSRFToken: "tok-1"}}
	data.LastBatchID = "lote-42"

	out := render(t, r, "importar", data)

	if !strings.Contains(out, "Lote: lote-42") {
		t.Error("batch banner should show the recorded batch id")
	}
	if !strings.Contains(out, "/importar/reverter") {
		t.Error("revert form should be present when a batch id exists")
	}
}

func TestRenderer_ImportarResultPanel(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("empty response shows no summary", func(t *testing.T) {
		data := &importarPage{basePage: basePage{Title: "Importar Planilha", Active: "importar", CSRFToken: "tok-1"}}
		data.Result = &importer.Result{}

		out := render(t, r, "importar", data)

		if strings.Contains(out, "Resultado da importação") {
			t.Error("summary panel should not render when nothing was inserted")
		}
		if strings.Contains(out, "registro(s)") {
			t.Error("insertion count should not render when nothing was inserted")
		}
	})

	t.Run("row errors render without a summary", func(t *testing.T) {
		data := &importarPage{basePage: basePage{Title: "Importar Planilha", Active: "importar", CSRFToken: "tok-1"}}
		data.Result = &importer.Result{Erros: []string{"Linha 3: data inválida"}}

		out := render(t, r, "importar", data)

		if !strings.Contains(out, "Linha 3: data inválida") {
			t.Error("row errors should render even when nothing was inserted")
		}
		if strings.Contains(out, "Resultado da importação") {
			t.Error("summary panel should stay hidden without inserted records")
		}
	})

	t.Run("inserted records show the summary", func(t *testing.T) {
		data := &importarPage{basePage: basePage{Title: "Importar Planilha", Active: "importar", CSRFToken: "tok-1"}}
		data.Result = &importer.Result{BatchID: "b-1", Total: 10}

		out := render(t, r, "importar", data)

		if !strings.Contains(out, "10 registro(s) inserido(s).") {
			t.Error("summary should render after a successful insert")
		}
	})
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	if err := r.Render(&buf, "nao-existe", nil); err == nil {
		t.Error("rendering an unknown template should fail")
	}
}
