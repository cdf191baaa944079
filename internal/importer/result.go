// Package importer implements the spreadsheet import workflow: structural
// validation, archival, forwarding to the analytics backend, and the
// revert of a previously inserted batch.
package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/format"
)

// Result is the normalized outcome of an upload. The backend reports
// insertion counts in three different shapes depending on its version;
// classification flattens them into one.
type Result struct {
	BatchID string

	// Total is the overall number of inserted records.
	Total int

	// Detailed indicates per-collection counters are present.
	Detailed         bool
	FatosPedidos     int
	PolpaMetricas    int
	ManteigaMetricas int

	// Erros holds row-level problems reported alongside a successful
	// insert (e.g. skipped lines).
	Erros []string
}

// insertedCounters mirrors the nested "inseridos" object shape.
type insertedCounters struct {
	FatosPedidos     *int `json:"fatos_pedidos"`
	PolpaMetricas    *int `json:"polpa_metricas"`
	ManteigaMetricas *int `json:"manteiga_metricas"`
}

// Classify normalizes an upload response.
//
// Count precedence:
//  1. "inseridos" as a bare number
//  2. "inseridos" as an object of per-collection counters
//  3. the same counters at the top level of the response
//
// A response matching none of the shapes still classifies; Inserted()
// then depends on the batch id alone.
func Classify(resp *analytics.UploadResponse) Result {
	r := Result{BatchID: resp.BatchID}

	if len(resp.Inseridos) > 0 {
		var n int
		if err := json.Unmarshal(resp.Inseridos, &n); err == nil {
			r.Total = n
			r.Erros = normalizeErros(resp.Erros)
			return r
		}

		var c insertedCounters
		if err := json.Unmarshal(resp.Inseridos, &c); err == nil && (c.FatosPedidos != nil || c.PolpaMetricas != nil || c.ManteigaMetricas != nil) {
			r.applyCounters(c)
			r.Erros = normalizeErros(resp.Erros)
			return r
		}
	}

	if resp.FatosPedidos != nil || resp.PolpaMetricas != nil || resp.ManteigaMetricas != nil {
		r.applyCounters(insertedCounters{
			FatosPedidos:     resp.FatosPedidos,
			PolpaMetricas:    resp.PolpaMetricas,
			ManteigaMetricas: resp.ManteigaMetricas,
		})
	}

	r.Erros = normalizeErros(resp.Erros)
	return r
}

func (r *Result) applyCounters(c insertedCounters) {
	r.Detailed = true
	if c.FatosPedidos != nil {
		r.FatosPedidos = *c.FatosPedidos
	}
	if c.PolpaMetricas != nil {
		r.PolpaMetricas = *c.PolpaMetricas
	}
	if c.ManteigaMetricas != nil {
		r.ManteigaMetricas = *c.ManteigaMetricas
	}
	r.Total = r.FatosPedidos + r.PolpaMetricas + r.ManteigaMetricas
}

// Inserted reports whether the backend actually took data: either it
// returned a batch id or it reported at least one inserted record.
// HTTP status alone never decides success.
func (r Result) Inserted() bool {
	return r.BatchID != "" || r.Total > 0
}

// Summary renders the user-facing one-liner for the import page. Only
// collections that actually received rows are enumerated.
func (r Result) Summary() string {
	if r.Detailed {
		var parts []string
		if r.FatosPedidos > 0 {
			parts = append(parts, format.Int(r.FatosPedidos)+" fatos")
		}
		if r.PolpaMetricas > 0 {
			parts = append(parts, format.Int(r.PolpaMetricas)+" polpa")
		}
		if r.ManteigaMetricas > 0 {
			parts = append(parts, format.Int(r.ManteigaMetricas)+" manteiga")
		}
		if len(parts) > 0 {
			return fmt.Sprintf("%s registro(s) (%s).", format.Int(r.Total), strings.Join(parts, ", "))
		}
	}
	return fmt.Sprintf("%s registro(s) inserido(s).", format.Int(r.Total))
}

// normalizeErros accepts the error list as an array of strings, an array
// of objects carrying a message field, or a single string.
func normalizeErros(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonEmpty(list)
	}

	var objs []struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Erro    string `json:"erro"`
		Row     int    `json:"row"`
		Linha   int    `json:"linha"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			msg := o.Message
			if msg == "" {
				msg = o.Msg
			}
			if msg == "" {
				msg = o.Erro
			}
			if msg == "" {
				continue
			}
			row := o.Row
			if row == 0 {
				row = o.Linha
			}
			if row > 0 {
				msg = fmt.Sprintf("Linha %d: %s", row, msg)
			}
			out = append(out, msg)
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	return nil
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
