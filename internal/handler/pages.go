package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/csrf"
	"github.com/joaobaungartner/goncalves-frontend/internal/derive"
	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/middleware"
	"github.com/joaobaungartner/goncalves-frontend/internal/query"
)

// PagesHandler renders the report pages. Every page follows the same
// shape: launch all of its backend fetches in parallel, settle, then
// render either the data or the backend's error message verbatim.
type PagesHandler struct {
	api      *analytics.Client
	renderer TemplateRenderer
	logger   *slog.Logger
}

func NewPagesHandler(api *analytics.Client, renderer TemplateRenderer, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{
		api:      api,
		renderer: renderer,
		logger:   logger,
	}
}

// basePage carries what every report template needs.
type basePage struct {
	Title     string
	Active    string
	Error     string
	DateFrom  string
	DateTo    string
	CSRFToken string
}

func (b *basePage) setError(msg string) { b.Error = msg }

func (b *basePage) setCSRF(token string) { b.CSRFToken = token }

func (b *basePage) setRange(rng analytics.RangeParams) {
	b.DateFrom = rng.DateFrom
	b.DateTo = rng.DateTo
}

type pageView interface {
	setError(msg string)
	setCSRF(token string)
}

// finishPage settles a page render. A canceled request writes nothing; a
// failed load renders the page with the first error's message; otherwise
// the full data renders.
func finishPage(w http.ResponseWriter, ctrl *query.Controller, renderer TemplateRenderer, logger *slog.Logger, name string, data pageView) {
	switch ctrl.Phase() {
	case query.Loading:
		// Request canceled mid-flight: the client is gone, results are
		// stale, nothing to write.
		return
	case query.Failed:
		err := ctrl.Err()
		logger.Info("page load failed",
			"page", name,
			"error", err,
			"op", domain.ErrorOp(err),
		)
		data.setError(domain.ErrorMessage(err))
	}
	renderer.RenderHTTP(w, name, data)
}

func (h *PagesHandler) finish(w http.ResponseWriter, r *http.Request, ctrl *query.Controller, name string, data pageView) {
	data.setCSRF(csrf.Token(r.Context()))
	finishPage(w, ctrl, h.renderer, h.logger, name, data)
}

// rangeFromQuery passes the optional date window straight through to the
// backend; no parsing beyond presence.
func rangeFromQuery(r *http.Request) analytics.RangeParams {
	q := r.URL.Query()
	return analytics.RangeParams{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
}

// sessionToken returns the backend bearer token for the authenticated
// session, or "" when the request somehow bypassed the auth middleware.
func sessionToken(r *http.Request) string {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		return sess.APIToken
	}
	return ""
}

func (h *PagesHandler) token(r *http.Request) string {
	return sessionToken(r)
}

// =============================================================================
// Visão Geral
// =============================================================================

type visaoGeralPage struct {
	basePage
	Resumo     *analytics.VisaoGeralResponse
	SerieBars  []derive.Bar
	Distrib    []derive.Bar
	DistribRaw []analytics.DistribuicaoVendasProdutoItem
}

func (h *PagesHandler) VisaoGeral(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &visaoGeralPage{basePage: basePage{Title: "Visão Geral", Active: "visao-geral"}}
	data.setRange(rng)
	var serie []analytics.SerieFaturamentoItem

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Resumo, func(ctx context.Context) (*analytics.VisaoGeralResponse, error) {
			return h.api.VisaoGeral(ctx, token, analytics.VisaoGeralParams{RangeParams: rng})
		}),
		query.Fetch(ctrl, &serie, func(ctx context.Context) ([]analytics.SerieFaturamentoItem, error) {
			return h.api.SerieFaturamento(ctx, token, analytics.SerieParams{
				RangeParams: rng,
				Granularity: "month",
				Meses:       12,
			})
		}),
		query.Fetch(ctrl, &data.DistribRaw, func(ctx context.Context) ([]analytics.DistribuicaoVendasProdutoItem, error) {
			return h.api.DistribuicaoVendasProduto(ctx, token, analytics.LimitParams{RangeParams: rng, Limit: 10})
		}),
	)

	if ctrl.Phase() == query.Ready {
		labels := make([]string, len(serie))
		values := make([]float64, len(serie))
		for i, it := range serie {
			labels[i] = derive.PeriodLabel(it.Year, it.Month, it.Day)
			values[i] = it.Faturamento
		}
		data.SerieBars = derive.Bars(labels, values)

		dl := make([]string, len(data.DistribRaw))
		dv := make([]float64, len(data.DistribRaw))
		for i, it := range data.DistribRaw {
			dl[i] = it.Produto
			dv[i] = it.Faturamento
		}
		data.Distrib = derive.Bars(dl, dv)
	}

	h.finish(w, r, ctrl, "visao-geral", data)
}

// =============================================================================
// Financeiro
// =============================================================================

type financeiroPage struct {
	basePage
	PorProduto []derive.Bar
	PorCanal   []derive.Bar
	Evolucao   []derive.Bar
}

func (h *PagesHandler) Financeiro(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &financeiroPage{basePage: basePage{Title: "Financeiro", Active: "financeiro"}}
	data.setRange(rng)
	var (
		porProduto []analytics.FaturamentoPorItem
		porCanal   []analytics.FaturamentoPorItem
		evolucao   []analytics.SerieFaturamentoItem
	)

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &porProduto, func(ctx context.Context) ([]analytics.FaturamentoPorItem, error) {
			return h.api.FaturamentoPorProduto(ctx, token, rng)
		}),
		query.Fetch(ctrl, &porCanal, func(ctx context.Context) ([]analytics.FaturamentoPorItem, error) {
			return h.api.FaturamentoPorCanal(ctx, token, rng)
		}),
		query.Fetch(ctrl, &evolucao, func(ctx context.Context) ([]analytics.SerieFaturamentoItem, error) {
			return h.api.EvolucaoFaturamento(ctx, token, analytics.SerieParams{RangeParams: rng, Granularity: "month"})
		}),
	)

	if ctrl.Phase() == query.Ready {
		data.PorProduto = faturamentoBars(porProduto, func(it analytics.FaturamentoPorItem) string { return it.Produto })
		data.PorCanal = faturamentoBars(porCanal, func(it analytics.FaturamentoPorItem) string { return it.Canal })

		labels := make([]string, len(evolucao))
		values := make([]float64, len(evolucao))
		for i, it := range evolucao {
			labels[i] = derive.PeriodLabel(it.Year, it.Month, it.Day)
			values[i] = it.Faturamento
		}
		data.Evolucao = derive.Bars(labels, values)
	}

	h.finish(w, r, ctrl, "financeiro", data)
}

func faturamentoBars(items []analytics.FaturamentoPorItem, label func(analytics.FaturamentoPorItem) string) []derive.Bar {
	labels := make([]string, len(items))
	values := make([]float64, len(items))
	for i, it := range items {
		labels[i] = label(it)
		values[i] = it.Faturamento
	}
	return derive.Bars(labels, values)
}

// =============================================================================
// Vendas
// =============================================================================

type vendasPage struct {
	basePage
	VolumeBars []derive.Bar
	Kpis       *analytics.VendasKpisResponse
	Ranking    []analytics.RankingSegmentosItem
	Mix        []analytics.MixProdutosItem
}

func (h *PagesHandler) Vendas(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &vendasPage{basePage: basePage{Title: "Vendas", Active: "vendas"}}
	data.setRange(rng)
	var volume []analytics.VolumePorCanalItem

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &volume, func(ctx context.Context) ([]analytics.VolumePorCanalItem, error) {
			return h.api.VolumePorCanal(ctx, token, rng)
		}),
		query.Fetch(ctrl, &data.Kpis, func(ctx context.Context) (*analytics.VendasKpisResponse, error) {
			return h.api.VendasKpis(ctx, token, rng)
		}),
		query.Fetch(ctrl, &data.Ranking, func(ctx context.Context) ([]analytics.RankingSegmentosItem, error) {
			return h.api.RankingSegmentos(ctx, token, analytics.RankingSegmentosParams{RangeParams: rng, OrdenarPor: "faturamento", Limit: 10})
		}),
		query.Fetch(ctrl, &data.Mix, func(ctx context.Context) ([]analytics.MixProdutosItem, error) {
			return h.api.MixProdutos(ctx, token, rng)
		}),
	)

	if ctrl.Phase() == query.Ready {
		labels := make([]string, len(volume))
		values := make([]float64, len(volume))
		for i, it := range volume {
			labels[i] = it.Canal
			values[i] = it.VolumeKg
		}
		data.VolumeBars = derive.Bars(labels, values)
	}

	h.finish(w, r, ctrl, "vendas", data)
}

// =============================================================================
// Produtos
// =============================================================================

type produtosPage struct {
	basePage
	Comparativo []analytics.ComparativoPolpaManteigaItem
	Evolucao    derive.PivotTable
}

func (h *PagesHandler) Produtos(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &produtosPage{basePage: basePage{Title: "Produtos", Active: "produtos"}}
	data.setRange(rng)
	var evolucao []analytics.EvolucaoMensalProdutoItem

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Comparativo, func(ctx context.Context) ([]analytics.ComparativoPolpaManteigaItem, error) {
			return h.api.ComparativoPolpaManteiga(ctx, token, rng)
		}),
		query.Fetch(ctrl, &evolucao, func(ctx context.Context) ([]analytics.EvolucaoMensalProdutoItem, error) {
			return h.api.EvolucaoMensalPorProduto(ctx, token, rng)
		}),
	)

	if ctrl.Phase() == query.Ready {
		points := make([]derive.PivotPoint, len(evolucao))
		for i, it := range evolucao {
			points[i] = derive.PivotPoint{
				Year:     it.Year,
				Month:    it.Month,
				Category: it.Produto,
				Value:    it.VolumeKg,
			}
		}
		data.Evolucao = derive.Pivot(points)
	}

	h.finish(w, r, ctrl, "produtos", data)
}

// =============================================================================
// Canais e Mercados
// =============================================================================

type canaisMercadosPage struct {
	basePage
	Canais      []analytics.PerformanceCanalItem
	CanaisBars  []derive.Bar
	Regioes     []analytics.PerformanceRegiaoItem
	RegioesBars []derive.Bar
}

func (h *PagesHandler) CanaisMercados(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &canaisMercadosPage{basePage: basePage{Title: "Canais e Mercados", Active: "canais-mercados"}}
	data.setRange(rng)

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Canais, func(ctx context.Context) ([]analytics.PerformanceCanalItem, error) {
			return h.api.PerformanceCanais(ctx, token, rng)
		}),
		query.Fetch(ctrl, &data.Regioes, func(ctx context.Context) ([]analytics.PerformanceRegiaoItem, error) {
			return h.api.PerformanceRegioes(ctx, token, rng)
		}),
	)

	if ctrl.Phase() == query.Ready {
		cl := make([]string, len(data.Canais))
		cv := make([]float64, len(data.Canais))
		for i, it := range data.Canais {
			cl[i] = it.Canal
			cv[i] = it.Faturamento
		}
		data.CanaisBars = derive.Bars(cl, cv)

		rl := make([]string, len(data.Regioes))
		rv := make([]float64, len(data.Regioes))
		for i, it := range data.Regioes {
			rl[i] = it.Regiao
			rv[i] = it.Faturamento
		}
		data.RegioesBars = derive.Bars(rl, rv)
	}

	h.finish(w, r, ctrl, "canais-mercados", data)
}

// =============================================================================
// Clientes
// =============================================================================

type clientesPage struct {
	basePage
	Segmentos []analytics.ClientesPorSegmentoItem
}

func (h *PagesHandler) Clientes(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &clientesPage{basePage: basePage{Title: "Clientes", Active: "clientes"}}
	data.setRange(rng)

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Segmentos, func(ctx context.Context) ([]analytics.ClientesPorSegmentoItem, error) {
			return h.api.ClientesPorSegmento(ctx, token, rng)
		}),
	)

	h.finish(w, r, ctrl, "clientes", data)
}

// =============================================================================
// Qualidade e Satisfação
// =============================================================================

type qualidadePage struct {
	basePage
	Nps       *analytics.NpsResponse
	SerieBars []derive.Bar
}

func (h *PagesHandler) QualidadeSatisfacao(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &qualidadePage{basePage: basePage{Title: "Qualidade e Satisfação", Active: "qualidade-satisfacao"}}
	data.setRange(rng)
	var serie []analytics.NpsSerieItem
	porProduto := true

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Nps, func(ctx context.Context) (*analytics.NpsResponse, error) {
			return h.api.Nps(ctx, token, analytics.NpsParams{RangeParams: rng, PorProduto: &porProduto})
		}),
		query.Fetch(ctrl, &serie, func(ctx context.Context) ([]analytics.NpsSerieItem, error) {
			return h.api.NpsSerie(ctx, token, analytics.SerieParams{RangeParams: rng, Granularity: "month"})
		}),
	)

	if ctrl.Phase() == query.Ready {
		labels := make([]string, len(serie))
		values := make([]float64, len(serie))
		for i, it := range serie {
			labels[i] = derive.PeriodLabel(it.Year, it.Month, it.Day)
			values[i] = it.NPSMedio
		}
		data.SerieBars = derive.Bars(labels, values)
	}

	h.finish(w, r, ctrl, "qualidade-satisfacao", data)
}

// =============================================================================
// Logística e Custos
// =============================================================================

type logisticaPage struct {
	basePage
	Resumo   *analytics.LogisticaResumoResponse
	Evolucao []derive.Bar
	VsVolume []analytics.LogisticaVsVolumeItem
}

func (h *PagesHandler) LogisticaCustos(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	rng := rangeFromQuery(r)

	data := &logisticaPage{basePage: basePage{Title: "Logística e Custos", Active: "logistica-custos"}}
	data.setRange(rng)
	var evolucao []analytics.LogisticaEvolucaoItem

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Resumo, func(ctx context.Context) (*analytics.LogisticaResumoResponse, error) {
			return h.api.LogisticaResumo(ctx, token, rng)
		}),
		query.Fetch(ctrl, &evolucao, func(ctx context.Context) ([]analytics.LogisticaEvolucaoItem, error) {
			return h.api.LogisticaEvolucao(ctx, token, analytics.SerieParams{RangeParams: rng, Granularity: "month"})
		}),
		query.Fetch(ctrl, &data.VsVolume, func(ctx context.Context) ([]analytics.LogisticaVsVolumeItem, error) {
			return h.api.LogisticaVsVolume(ctx, token, analytics.LimitParams{RangeParams: rng, Limit: 50})
		}),
	)

	if ctrl.Phase() == query.Ready {
		labels := make([]string, len(evolucao))
		values := make([]float64, len(evolucao))
		for i, it := range evolucao {
			labels[i] = derive.PeriodLabel(it.Year, it.Month, it.Day)
			values[i] = it.CustoLogistico
		}
		data.Evolucao = derive.Bars(labels, values)
	}

	h.finish(w, r, ctrl, "logistica-custos", data)
}

// =============================================================================
// Analytics (metadata)
// =============================================================================

type analyticsPage struct {
	basePage
	Meta *analytics.AnalyticsMetaResponse
}

func (h *PagesHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)

	data := &analyticsPage{basePage: basePage{Title: "Analytics", Active: "analytics"}}

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Meta, func(ctx context.Context) (*analytics.AnalyticsMetaResponse, error) {
			return h.api.Meta(ctx, token)
		}),
	)

	h.finish(w, r, ctrl, "analytics", data)
}
