package analytics

import "encoding/json"

// Response types for the Gonçalves analytics API. Field names mirror the
// backend's JSON contract; no schema validation happens on top of decoding.

// MonthRef identifies a calendar month.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// KPISet is one period's headline numbers on the overview page.
type KPISet struct {
	FaturamentoTotal float64  `json:"faturamento_total"`
	VolumeKg         float64  `json:"volume_kg"`
	NumPedidos       int      `json:"num_pedidos"`
	TicketMedio      float64  `json:"ticket_medio"`
	NPSMedio         *float64 `json:"nps_medio"`
}

// KPIVariation holds month-over-month percentage changes. Nil means the
// backend could not compute the variation (e.g., no prior month).
type KPIVariation struct {
	Faturamento *float64 `json:"faturamento"`
	VolumeKg    *float64 `json:"volume_kg"`
	NumPedidos  *float64 `json:"num_pedidos"`
	TicketMedio *float64 `json:"ticket_medio"`
	NPSMedio    *float64 `json:"nps_medio"`
}

// VisaoGeralResponse is GET /dashboard/visao-geral.
type VisaoGeralResponse struct {
	MesAtual        MonthRef     `json:"mes_atual"`
	KPIsAtual       KPISet       `json:"kpis_atual"`
	KPIsMesAnterior KPISet       `json:"kpis_mes_anterior"`
	VariacaoPct     KPIVariation `json:"variacao_pct"`
}

// SerieFaturamentoItem is one point of a revenue series. Day is zero for
// monthly granularity.
type SerieFaturamentoItem struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Day         int     `json:"day,omitempty"`
	Faturamento float64 `json:"faturamento"`
}

type DistribuicaoVendasProdutoItem struct {
	Produto     string  `json:"produto"`
	Faturamento float64 `json:"faturamento"`
	VolumeKg    float64 `json:"volume_kg"`
}

// FaturamentoPorItem is revenue grouped by product, channel or region;
// only one of the three name fields is populated per endpoint.
type FaturamentoPorItem struct {
	Produto     string  `json:"produto,omitempty"`
	Canal       string  `json:"canal,omitempty"`
	Regiao      string  `json:"regiao,omitempty"`
	Faturamento float64 `json:"faturamento"`
}

type VolumePorCanalItem struct {
	Canal      string  `json:"canal"`
	VolumeKg   float64 `json:"volume_kg"`
	NumPedidos int     `json:"num_pedidos"`
}

type CanalParticipacao struct {
	Canal                  string  `json:"canal"`
	VolumeKg               float64 `json:"volume_kg"`
	NumPedidos             int     `json:"num_pedidos"`
	ParticipacaoVolumePct  float64 `json:"participacao_volume_pct"`
	ParticipacaoPedidosPct float64 `json:"participacao_pedidos_pct"`
}

// VendasKpisResponse is GET /dashboard/vendas/kpis.
type VendasKpisResponse struct {
	Totais struct {
		VolumeKg   float64 `json:"volume_kg"`
		NumPedidos int     `json:"num_pedidos"`
	} `json:"totais"`
	PorCanal []CanalParticipacao `json:"por_canal"`
}

type RankingSegmentosItem struct {
	Segmento    string  `json:"segmento"`
	Faturamento float64 `json:"faturamento"`
	VolumeKg    float64 `json:"volume_kg"`
	NumPedidos  int     `json:"num_pedidos"`
}

type MixProdutosItem struct {
	Produto     string  `json:"produto"`
	VolumeKg    float64 `json:"volume_kg"`
	Faturamento float64 `json:"faturamento"`
	NumPedidos  int     `json:"num_pedidos"`
}

type ComparativoPolpaManteigaItem struct {
	Produto     string  `json:"produto"`
	VolumeKg    float64 `json:"volume_kg"`
	Faturamento float64 `json:"faturamento"`
	NumPedidos  int     `json:"num_pedidos"`
	PrecoMedioKg float64 `json:"preco_medio_kg"`
}

type EvolucaoMensalProdutoItem struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Produto     string  `json:"produto"`
	VolumeKg    float64 `json:"volume_kg"`
	Faturamento float64 `json:"faturamento"`
}

type PerformanceCanalItem struct {
	Canal       string  `json:"canal"`
	Faturamento float64 `json:"faturamento"`
	VolumeKg    float64 `json:"volume_kg"`
	NumPedidos  int     `json:"num_pedidos"`
}

type PerformanceRegiaoItem struct {
	Regiao      string  `json:"regiao"`
	Faturamento float64 `json:"faturamento"`
	VolumeKg    float64 `json:"volume_kg"`
	NumPedidos  int     `json:"num_pedidos"`
}

type ClientesPorSegmentoItem struct {
	Segmento    string  `json:"segmento"`
	Faturamento float64 `json:"faturamento"`
	VolumeKg    float64 `json:"volume_kg"`
	NumPedidos  int     `json:"num_pedidos"`
	TicketMedio float64 `json:"ticket_medio"`
}

type NpsProdutoItem struct {
	Produto       string  `json:"produto"`
	NPSMedio      float64 `json:"nps_medio"`
	NumAvaliacoes int     `json:"num_avaliacoes"`
}

// NpsResponse is GET /dashboard/qualidade-satisfacao/nps. Items is only
// populated when the por_produto breakdown was requested.
type NpsResponse struct {
	NPSMedio      float64          `json:"nps_medio"`
	NumAvaliacoes int              `json:"num_avaliacoes"`
	PorProduto    bool             `json:"por_produto,omitempty"`
	Items         []NpsProdutoItem `json:"items,omitempty"`
}

type NpsSerieItem struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Day      int     `json:"day,omitempty"`
	NPSMedio float64 `json:"nps_medio"`
}

type LogisticaResumoResponse struct {
	CustoLogisticoTotal float64 `json:"custo_logistico_total"`
	CustoLogisticoMedio float64 `json:"custo_logistico_medio"`
	ReceitaTotal        float64 `json:"receita_total"`
	CustoVsReceitaPct   float64 `json:"custo_vs_receita_pct"`
	NumPedidos          int     `json:"num_pedidos"`
}

type LogisticaEvolucaoItem struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	Day            int     `json:"day,omitempty"`
	CustoLogistico float64 `json:"custo_logistico"`
	NumPedidos     int     `json:"num_pedidos"`
}

type LogisticaVsVolumeItem struct {
	IDPedido        string  `json:"id_pedido"`
	VolumeKg        float64 `json:"volume_kg"`
	CustoLogistico  float64 `json:"custo_logistico"`
	ReceitaEstimada float64 `json:"receita_estimada"`
}

type Pedido struct {
	IDPedido           string   `json:"id_pedido"`
	DataPedido         string   `json:"data_pedido"`
	TipoProduto        string   `json:"tipo_produto"`
	Canal              string   `json:"canal"`
	RegiaoDestino      string   `json:"regiao_destino"`
	ClienteSegmento    string   `json:"cliente_segmento"`
	QuantidadeKg       float64  `json:"quantidade_kg"`
	PrecoUnitarioBRLKg float64  `json:"preco_unitario_brl_kg"`
	NPS0a10            *float64 `json:"nps_0a10,omitempty"`
	MesDoAnoNum        int      `json:"mes_do_ano_num"`
	MesDoAno           string   `json:"mes_do_ano,omitempty"`
}

// PedidosListResponse is GET /pedidos (paginated).
type PedidosListResponse struct {
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int      `json:"total"`
	Items    []Pedido `json:"items"`
}

type PedidosKpisResponse struct {
	Pedidos              int      `json:"pedidos"`
	VolumeTotalKg        float64  `json:"volume_total_kg"`
	ReceitaEstimadaTotal float64  `json:"receita_estimada_total"`
	PrecoMedio           *float64 `json:"preco_medio"`
	NPSMedio             *float64 `json:"nps_medio"`
}

type AnalyticsMetaResponse struct {
	Collections       []string            `json:"collections"`
	Fields            map[string][]string `json:"fields"`
	NumericFields     map[string][]string `json:"numeric_fields"`
	CategoricalFields map[string][]string `json:"categorical_fields"`
}

// UploadResponse is the raw body of POST /upload/excel.
//
// The insertion count is polymorphic: Inseridos may be a bare number or an
// object of per-collection counters, or the counters may sit at the top
// level instead. The raw shapes are kept here; classification happens in
// the importer package, never deeper than that boundary.
type UploadResponse struct {
	BatchID          string          `json:"batch_id,omitempty"`
	Inseridos        json.RawMessage `json:"inseridos,omitempty"`
	FatosPedidos     *int            `json:"fatos_pedidos,omitempty"`
	PolpaMetricas    *int            `json:"polpa_metricas,omitempty"`
	ManteigaMetricas *int            `json:"manteiga_metricas,omitempty"`
	Erros            json.RawMessage `json:"erros,omitempty"`
}
