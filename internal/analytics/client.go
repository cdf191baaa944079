package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/metrics"
)

// ================================================================
// Analytics API Client
// ================================================================

// Client is a typed HTTP gateway to the Gonçalves analytics backend.
// It owns serialization, authentication headers and error extraction;
// callers only see Go types and domain errors.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a new analytics client. baseURL must not end with a slash.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ================================================================
// Authentication
// ================================================================

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token. A non-success status
// surfaces the backend's own message; a success body without a token is
// still a failure.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "analytics.Login"

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", domain.Internal(err, op, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", domain.Internal(err, op, "")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("/auth/login", "error").Inc()
		return "", domain.Upstream(op, "Falha no login")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.Internal(err, op, "")
	}
	metrics.UpstreamRequests.WithLabelValues("/auth/login", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractError(resp.StatusCode, respBody)
		if msg == fmt.Sprintf("HTTP %d", resp.StatusCode) {
			msg = "Falha no login"
		}
		return "", domain.Unauthorized(op, msg)
	}

	var lr loginResponse
	if err := json.Unmarshal(respBody, &lr); err != nil || lr.AccessToken == "" {
		return "", domain.Upstream(op, "Token não retornado")
	}
	return lr.AccessToken, nil
}

// ================================================================
// Request Helpers
// ================================================================

// get performs an authenticated GET and decodes the JSON body into out.
// Query parameters with zero values are omitted entirely.
func (c *Client) get(ctx context.Context, token, path string, q url.Values, out any) error {
	op := "analytics." + path

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Internal(err, op, "")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(path, "error").Inc()
		if ctx.Err() != nil {
			return domain.Internal(ctx.Err(), op, "")
		}
		return domain.Upstream(op, "Falha ao contactar o servidor de dados.")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Internal(err, op, "")
	}
	metrics.UpstreamRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.Unauthorized(op, extractError(resp.StatusCode, body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Upstream(op, extractError(resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.Internal(fmt.Errorf("decode response: %w", err), op, "")
	}
	return nil
}

func setStr(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}

func setInt(q url.Values, key string, val int) {
	if val > 0 {
		q.Set(key, strconv.Itoa(val))
	}
}

func setBool(q url.Values, key string, val *bool) {
	if val != nil {
		q.Set(key, strconv.FormatBool(*val))
	}
}

// itemsEnvelope wraps list endpoints that return {"items": [...]}.
type itemsEnvelope[T any] struct {
	Items []T `json:"items"`
}

// ================================================================
// Dashboard Endpoints
// ================================================================

// RangeParams is the common date window accepted by most endpoints.
// Dates are YYYY-MM-DD strings; empty means unbounded.
type RangeParams struct {
	DateFrom string
	DateTo   string
}

func (p RangeParams) values() url.Values {
	q := url.Values{}
	setStr(q, "date_from", p.DateFrom)
	setStr(q, "date_to", p.DateTo)
	return q
}

type VisaoGeralParams struct {
	RangeParams
	MesAtual int
	AnoAtual int
}

func (c *Client) VisaoGeral(ctx context.Context, token string, p VisaoGeralParams) (*VisaoGeralResponse, error) {
	q := p.values()
	setInt(q, "mes_atual", p.MesAtual)
	setInt(q, "ano_atual", p.AnoAtual)
	var out VisaoGeralResponse
	if err := c.get(ctx, token, "/dashboard/visao-geral", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SerieParams selects the granularity ("month" or "day") and, for monthly
// series, how many months back to include.
type SerieParams struct {
	RangeParams
	Granularity string
	Meses       int
}

func (p SerieParams) values() url.Values {
	q := p.RangeParams.values()
	setStr(q, "granularity", p.Granularity)
	setInt(q, "meses", p.Meses)
	return q
}

func (c *Client) SerieFaturamento(ctx context.Context, token string, p SerieParams) ([]SerieFaturamentoItem, error) {
	var out itemsEnvelope[SerieFaturamentoItem]
	if err := c.get(ctx, token, "/dashboard/visao-geral/serie-faturamento", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

type LimitParams struct {
	RangeParams
	Limit int
}

func (p LimitParams) values() url.Values {
	q := p.RangeParams.values()
	setInt(q, "limit", p.Limit)
	return q
}

func (c *Client) DistribuicaoVendasProduto(ctx context.Context, token string, p LimitParams) ([]DistribuicaoVendasProdutoItem, error) {
	var out itemsEnvelope[DistribuicaoVendasProdutoItem]
	if err := c.get(ctx, token, "/dashboard/visao-geral/distribuicao-vendas-produto", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Financeiro ----------------

func (c *Client) FaturamentoPorProduto(ctx context.Context, token string, p RangeParams) ([]FaturamentoPorItem, error) {
	var out itemsEnvelope[FaturamentoPorItem]
	if err := c.get(ctx, token, "/dashboard/financeiro/faturamento-por-produto", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) FaturamentoPorCanal(ctx context.Context, token string, p RangeParams) ([]FaturamentoPorItem, error) {
	var out itemsEnvelope[FaturamentoPorItem]
	if err := c.get(ctx, token, "/dashboard/financeiro/faturamento-por-canal", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) EvolucaoFaturamento(ctx context.Context, token string, p SerieParams) ([]SerieFaturamentoItem, error) {
	var out itemsEnvelope[SerieFaturamentoItem]
	if err := c.get(ctx, token, "/dashboard/financeiro/evolucao-faturamento", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Vendas ----------------

func (c *Client) VolumePorCanal(ctx context.Context, token string, p RangeParams) ([]VolumePorCanalItem, error) {
	var out itemsEnvelope[VolumePorCanalItem]
	if err := c.get(ctx, token, "/dashboard/vendas/volume-por-canal", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) VendasKpis(ctx context.Context, token string, p RangeParams) (*VendasKpisResponse, error) {
	var out VendasKpisResponse
	if err := c.get(ctx, token, "/dashboard/vendas/kpis", p.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RankingSegmentosParams struct {
	RangeParams
	OrdenarPor string
	Limit      int
}

func (c *Client) RankingSegmentos(ctx context.Context, token string, p RankingSegmentosParams) ([]RankingSegmentosItem, error) {
	q := p.RangeParams.values()
	setStr(q, "ordenar_por", p.OrdenarPor)
	setInt(q, "limit", p.Limit)
	var out itemsEnvelope[RankingSegmentosItem]
	if err := c.get(ctx, token, "/dashboard/vendas/ranking-segmentos", q, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) MixProdutos(ctx context.Context, token string, p RangeParams) ([]MixProdutosItem, error) {
	var out itemsEnvelope[MixProdutosItem]
	if err := c.get(ctx, token, "/dashboard/vendas/mix-produtos", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Produtos ----------------

func (c *Client) ComparativoPolpaManteiga(ctx context.Context, token string, p RangeParams) ([]ComparativoPolpaManteigaItem, error) {
	var out itemsEnvelope[ComparativoPolpaManteigaItem]
	if err := c.get(ctx, token, "/dashboard/produtos/comparativo-polpa-manteiga", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) EvolucaoMensalPorProduto(ctx context.Context, token string, p RangeParams) ([]EvolucaoMensalProdutoItem, error) {
	var out itemsEnvelope[EvolucaoMensalProdutoItem]
	if err := c.get(ctx, token, "/dashboard/produtos/evolucao-mensal-por-produto", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Canais e Mercados ----------------

func (c *Client) PerformanceCanais(ctx context.Context, token string, p RangeParams) ([]PerformanceCanalItem, error) {
	var out itemsEnvelope[PerformanceCanalItem]
	if err := c.get(ctx, token, "/dashboard/canais-mercados/performance-canal", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) PerformanceRegioes(ctx context.Context, token string, p RangeParams) ([]PerformanceRegiaoItem, error) {
	var out itemsEnvelope[PerformanceRegiaoItem]
	if err := c.get(ctx, token, "/dashboard/canais-mercados/performance-regiao", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Clientes ----------------

func (c *Client) ClientesPorSegmento(ctx context.Context, token string, p RangeParams) ([]ClientesPorSegmentoItem, error) {
	var out itemsEnvelope[ClientesPorSegmentoItem]
	if err := c.get(ctx, token, "/dashboard/clientes/por-segmento", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Qualidade e Satisfação ----------------

type NpsParams struct {
	RangeParams
	PorProduto *bool
}

func (c *Client) Nps(ctx context.Context, token string, p NpsParams) (*NpsResponse, error) {
	q := p.RangeParams.values()
	setBool(q, "por_produto", p.PorProduto)
	var out NpsResponse
	if err := c.get(ctx, token, "/dashboard/qualidade-satisfacao/nps", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NpsSerie(ctx context.Context, token string, p SerieParams) ([]NpsSerieItem, error) {
	var out itemsEnvelope[NpsSerieItem]
	if err := c.get(ctx, token, "/dashboard/qualidade-satisfacao/nps-serie", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ---------------- Logística e Custos ----------------

func (c *Client) LogisticaResumo(ctx context.Context, token string, p RangeParams) (*LogisticaResumoResponse, error) {
	var out LogisticaResumoResponse
	if err := c.get(ctx, token, "/dashboard/logistica-custos/resumo", p.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LogisticaEvolucao(ctx context.Context, token string, p SerieParams) ([]LogisticaEvolucaoItem, error) {
	var out itemsEnvelope[LogisticaEvolucaoItem]
	if err := c.get(ctx, token, "/dashboard/logistica-custos/evolucao-custo", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) LogisticaVsVolume(ctx context.Context, token string, p LimitParams) ([]LogisticaVsVolumeItem, error) {
	var out itemsEnvelope[LogisticaVsVolumeItem]
	if err := c.get(ctx, token, "/dashboard/logistica-custos/logistica-vs-volume", p.values(), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ================================================================
// Pedidos Endpoints
// ================================================================

// PedidosParams carries pagination and the optional categorical filters
// of the order listing.
type PedidosParams struct {
	Page            int
	PageSize        int
	TipoProduto     string
	Canal           string
	RegiaoDestino   string
	ClienteSegmento string
	MesDoAnoNum     int
}

func (p PedidosParams) filterValues() url.Values {
	q := url.Values{}
	setStr(q, "tipo_produto", p.TipoProduto)
	setStr(q, "canal", p.Canal)
	setStr(q, "regiao_destino", p.RegiaoDestino)
	setStr(q, "cliente_segmento", p.ClienteSegmento)
	setInt(q, "mes_do_ano_num", p.MesDoAnoNum)
	return q
}

func (c *Client) Pedidos(ctx context.Context, token string, p PedidosParams) (*PedidosListResponse, error) {
	q := p.filterValues()
	setInt(q, "page", p.Page)
	setInt(q, "page_size", p.PageSize)
	var out PedidosListResponse
	if err := c.get(ctx, token, "/pedidos", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PedidosKpis(ctx context.Context, token string, p PedidosParams) (*PedidosKpisResponse, error) {
	var out PedidosKpisResponse
	if err := c.get(ctx, token, "/pedidos/kpis", p.filterValues(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ================================================================
// Analytics Metadata
// ================================================================

func (c *Client) Meta(ctx context.Context, token string) (*AnalyticsMetaResponse, error) {
	var out AnalyticsMetaResponse
	if err := c.get(ctx, token, "/analytics/meta", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ================================================================
// Spreadsheet Upload
// ================================================================

// UploadExcel posts a spreadsheet as multipart form data under the "file"
// field. The response body is returned raw for the importer to classify.
func (c *Client) UploadExcel(ctx context.Context, token, filename string, file io.Reader) (*UploadResponse, error) {
	const op = "analytics.UploadExcel"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, domain.Internal(err, op, "")
	}
	if err := w.Close(); err != nil {
		return nil, domain.Internal(err, op, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/excel", &buf)
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("/upload/excel", "error").Inc()
		return nil, domain.Upstream(op, "Falha no upload")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}
	metrics.UpstreamRequests.WithLabelValues("/upload/excel", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.Upstream(op, extractError(resp.StatusCode, body))
	}

	var ur UploadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, domain.Internal(fmt.Errorf("decode response: %w", err), op, "")
	}
	return &ur, nil
}

type revertRequest struct {
	BatchID string `json:"batch_id"`
}

type revertResponse struct {
	Removidos json.RawMessage `json:"removidos,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// RevertBatch asks the backend to discard every record inserted by the
// given upload batch.
func (c *Client) RevertBatch(ctx context.Context, token, batchID string) error {
	const op = "analytics.RevertBatch"

	body, err := json.Marshal(revertRequest{BatchID: batchID})
	if err != nil {
		return domain.Internal(err, op, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/revert", bytes.NewReader(body))
	if err != nil {
		return domain.Internal(err, op, "")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("/upload/revert", "error").Inc()
		return domain.Upstream(op, "Falha ao reverter")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Internal(err, op, "")
	}
	metrics.UpstreamRequests.WithLabelValues("/upload/revert", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Upstream(op, extractError(resp.StatusCode, respBody))
	}
	return nil
}
