package importer

import (
	"encoding/json"
	"testing"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
)

func intp(v int) *int { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		resp         analytics.UploadResponse
		wantTotal    int
		wantDetailed bool
		wantInserted bool
		wantSummary  string
	}{
		{
			name: "bare number",
			resp: analytics.UploadResponse{
				BatchID:   "b-1",
				Inseridos: json.RawMessage(`10`),
			},
			wantTotal:    10,
			wantInserted: true,
			wantSummary:  "10 registro(s) inserido(s).",
		},
		{
			name: "nested counters",
			resp: analytics.UploadResponse{
				BatchID:   "b-2",
				Inseridos: json.RawMessage(`{"fatos_pedidos": 10, "polpa_metricas": 15, "manteiga_metricas": 5}`),
			},
			wantTotal:    30,
			wantDetailed: true,
			wantInserted: true,
			wantSummary:  "30 registro(s) (10 fatos, 15 polpa, 5 manteiga).",
		},
		{
			name: "top level counters",
			resp: analytics.UploadResponse{
				BatchID:          "b-3",
				FatosPedidos:     intp(4),
				PolpaMetricas:    intp(2),
				ManteigaMetricas: intp(1),
			},
			wantTotal:    7,
			wantDetailed: true,
			wantInserted: true,
			wantSummary:  "7 registro(s) (4 fatos, 2 polpa, 1 manteiga).",
		},
		{
			name: "bare number wins over top level counters",
			resp: analytics.UploadResponse{
				Inseridos:    json.RawMessage(`3`),
				FatosPedidos: intp(99),
			},
			wantTotal:    3,
			wantInserted: true,
			wantSummary:  "3 registro(s) inserido(s).",
		},
		{
			name: "partial nested counters",
			resp: analytics.UploadResponse{
				Inseridos: json.RawMessage(`{"fatos_pedidos": 8}`),
			},
			wantTotal:    8,
			wantDetailed: true,
			wantInserted: true,
			wantSummary:  "8 registro(s) (8 fatos).",
		},
		{
			name: "zero counters skipped in summary",
			resp: analytics.UploadResponse{
				Inseridos: json.RawMessage(`{"fatos_pedidos": 5, "polpa_metricas": 0, "manteiga_metricas": 3}`),
			},
			wantTotal:    8,
			wantDetailed: true,
			wantInserted: true,
			wantSummary:  "8 registro(s) (5 fatos, 3 manteiga).",
		},
		{
			name: "all counters zero falls back to plain summary",
			resp: analytics.UploadResponse{
				BatchID:   "b-7",
				Inseridos: json.RawMessage(`{"fatos_pedidos": 0, "polpa_metricas": 0, "manteiga_metricas": 0}`),
			},
			wantTotal:    0,
			wantDetailed: true,
			wantInserted: true,
			wantSummary:  "0 registro(s) inserido(s).",
		},
		{
			name:         "batch id only",
			resp:         analytics.UploadResponse{BatchID: "b-4"},
			wantTotal:    0,
			wantInserted: true,
			wantSummary:  "0 registro(s) inserido(s).",
		},
		{
			name:         "nothing inserted",
			resp:         analytics.UploadResponse{},
			wantTotal:    0,
			wantInserted: false,
			wantSummary:  "0 registro(s) inserido(s).",
		},
		{
			name: "zero count with batch id still inserted",
			resp: analytics.UploadResponse{
				BatchID:   "b-5",
				Inseridos: json.RawMessage(`0`),
			},
			wantTotal:    0,
			wantInserted: true,
			wantSummary:  "0 registro(s) inserido(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.resp)
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Detailed != tt.wantDetailed {
				t.Errorf("Detailed = %v, want %v", got.Detailed, tt.wantDetailed)
			}
			if got.Inserted() != tt.wantInserted {
				t.Errorf("Inserted() = %v, want %v", got.Inserted(), tt.wantInserted)
			}
			if got.Summary() != tt.wantSummary {
				t.Errorf("Summary() = %q, want %q", got.Summary(), tt.wantSummary)
			}
		})
	}
}

func TestClassify_LargeTotalsUseGrouping(t *testing.T) {
	got := Classify(&analytics.UploadResponse{
		BatchID:   "b-6",
		Inseridos: json.RawMessage(`12345`),
	})
	if want := "12.345 registro(s) inserido(s)."; got.Summary() != want {
		t.Errorf("Summary() = %q, want %q", got.Summary(), want)
	}
}

func TestNormalizeErros(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "string list",
			raw:  `["linha 3 ignorada", "linha 7 ignorada"]`,
			want: []string{"linha 3 ignorada", "linha 7 ignorada"},
		},
		{
			name: "object list with linha",
			raw:  `[{"linha": 3, "erro": "data inválida"}]`,
			want: []string{"Linha 3: data inválida"},
		},
		{
			name: "object list with msg",
			raw:  `[{"msg": "coluna ausente"}]`,
			want: []string{"coluna ausente"},
		},
		{
			name: "object list with message and row",
			raw:  `[{"message": "coluna ausente", "row": 3}]`,
			want: []string{"Linha 3: coluna ausente"},
		},
		{
			name: "single string",
			raw:  `"algo deu errado"`,
			want: []string{"algo deu errado"},
		},
		{
			name: "empty list",
			raw:  `[]`,
			want: nil,
		},
		{
			name: "absent",
			raw:  ``,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeErros(json.RawMessage(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("erros[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
