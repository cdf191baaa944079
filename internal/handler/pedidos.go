package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/csrf"
	"github.com/joaobaungartner/goncalves-frontend/internal/query"
)

const (
	pedidosDefaultPageSize = 20
	pedidosMaxPageSize     = 200
)

// PedidosHandler renders the paginated order browser. Filters are passed
// through to the backend as-is; the page never interprets their values.
type PedidosHandler struct {
	api      *analytics.Client
	renderer TemplateRenderer
	logger   *slog.Logger
}

func NewPedidosHandler(api *analytics.Client, renderer TemplateRenderer, logger *slog.Logger) *PedidosHandler {
	return &PedidosHandler{
		api:      api,
		renderer: renderer,
		logger:   logger,
	}
}

type pedidosFilters struct {
	TipoProduto     string
	Canal           string
	RegiaoDestino   string
	ClienteSegmento string
	MesDoAnoNum     int
}

type pedidosPage struct {
	basePage
	Filters  pedidosFilters
	Lista    *analytics.PedidosListResponse
	Kpis     *analytics.PedidosKpisResponse
	Page     int
	PageSize int
	LastPage int
	PrevURL  string
	NextURL  string
}

func (h *PedidosHandler) Pedidos(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	q := r.URL.Query()

	page := intQuery(q, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := intQuery(q, "page_size", pedidosDefaultPageSize)
	if pageSize < 1 {
		pageSize = pedidosDefaultPageSize
	}
	if pageSize > pedidosMaxPageSize {
		pageSize = pedidosMaxPageSize
	}

	filters := pedidosFilters{
		TipoProduto:     q.Get("tipo_produto"),
		Canal:           q.Get("canal"),
		RegiaoDestino:   q.Get("regiao_destino"),
		ClienteSegmento: q.Get("cliente_segmento"),
		MesDoAnoNum:     intQuery(q, "mes_do_ano_num", 0),
	}

	params := analytics.PedidosParams{
		Page:            page,
		PageSize:        pageSize,
		TipoProduto:     filters.TipoProduto,
		Canal:           filters.Canal,
		RegiaoDestino:   filters.RegiaoDestino,
		ClienteSegmento: filters.ClienteSegmento,
		MesDoAnoNum:     filters.MesDoAnoNum,
	}

	data := &pedidosPage{
		basePage: basePage{Title: "Pedidos", Active: "pedidos"},
		Filters:  filters,
		Page:     page,
		PageSize: pageSize,
	}

	ctrl := query.NewController(r.Context())
	ctrl.Load(
		query.Fetch(ctrl, &data.Lista, func(ctx context.Context) (*analytics.PedidosListResponse, error) {
			return h.api.Pedidos(ctx, token, params)
		}),
		query.Fetch(ctrl, &data.Kpis, func(ctx context.Context) (*analytics.PedidosKpisResponse, error) {
			return h.api.PedidosKpis(ctx, token, params)
		}),
	)

	if ctrl.Phase() == query.Ready && data.Lista != nil {
		data.LastPage = lastPage(data.Lista.Total, pageSize)
		if page > 1 {
			data.PrevURL = pageURL(q, page-1)
		}
		if page < data.LastPage {
			data.NextURL = pageURL(q, page+1)
		}
	}

	h.finish(w, r, ctrl, "pedidos", data)
}

func (h *PedidosHandler) token(r *http.Request) string {
	return sessionToken(r)
}

func (h *PedidosHandler) finish(w http.ResponseWriter, r *http.Request, ctrl *query.Controller, name string, data pageView) {
	data.setCSRF(csrf.Token(r.Context()))
	finishPage(w, ctrl, h.renderer, h.logger, name, data)
}

func intQuery(q url.Values, key string, def int) int {
	raw := q.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func lastPage(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// pageURL rebuilds the current query string with a different page number,
// keeping every active filter.
func pageURL(q url.Values, page int) string {
	next := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			next.Add(k, v)
		}
	}
	next.Set("page", strconv.Itoa(page))
	return "/pedidos?" + next.Encode()
}
