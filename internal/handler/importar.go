package handler

import (
	"log/slog"
	"net/http"

	"github.com/joaobaungartner/goncalves-frontend/internal/csrf"
	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/importer"
	"github.com/joaobaungartner/goncalves-frontend/internal/middleware"
)

// multipart form parse ceiling; the importer enforces the real file limit.
const importFormMemory = 32 << 20

// ImportarHandler serves the spreadsheet import page: upload a workbook,
// see the insertion summary, revert the last batch.
type ImportarHandler struct {
	importer *importer.Importer
	renderer TemplateRenderer
	logger   *slog.Logger
}

func NewImportarHandler(imp *importer.Importer, renderer TemplateRenderer, logger *slog.Logger) *ImportarHandler {
	return &ImportarHandler{
		importer: imp,
		renderer: renderer,
		logger:   logger,
	}
}

type importarPage struct {
	basePage
	LastBatchID string
	Result      *importer.Result
	Notice      string
}

func (h *ImportarHandler) page(r *http.Request) *importarPage {
	data := &importarPage{basePage: basePage{Title: "Importar Planilha", Active: "importar"}}
	data.setCSRF(csrf.Token(r.Context()))
	if sess := middleware.GetSession(r.Context()); sess != nil {
		data.LastBatchID = sess.LastBatchID
	}
	return data
}

func (h *ImportarHandler) ShowImportar(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "importar", h.page(r))
}

// Upload handles the multipart POST. Failures re-render the page with the
// error message; success shows the insertion summary and the new batch id.
func (h *ImportarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	data := h.page(r)

	if err := r.ParseMultipartForm(importFormMemory); err != nil {
		data.Error = "Envio inválido. Selecione um arquivo e tente novamente."
		h.render(w, http.StatusBadRequest, data)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		data.Error = "Selecione um arquivo para enviar."
		h.render(w, http.StatusBadRequest, data)
		return
	}
	defer file.Close()

	result, err := h.importer.Upload(r.Context(), sess, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		data.Error = domain.ErrorMessage(err)
		h.render(w, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), data)
		return
	}

	data.Result = result
	if result.BatchID != "" {
		data.LastBatchID = result.BatchID
	}
	h.renderer.RenderHTTP(w, "importar", data)
}

// Revert undoes the session's last import batch.
func (h *ImportarHandler) Revert(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	data := h.page(r)

	if err := h.importer.Revert(r.Context(), sess); err != nil {
		data.Error = domain.ErrorMessage(err)
		h.render(w, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), data)
		return
	}

	data.Notice = "Lote revertido com sucesso."
	data.LastBatchID = ""
	h.renderer.RenderHTTP(w, "importar", data)
}

func (h *ImportarHandler) render(w http.ResponseWriter, status int, data *importarPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	h.renderer.RenderHTTP(w, "importar", data)
}
