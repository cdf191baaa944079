package importer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joaobaungartner/goncalves-frontend/internal/analytics"
	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/metrics"
	"github.com/joaobaungartner/goncalves-frontend/internal/service"
	"github.com/joaobaungartner/goncalves-frontend/internal/storage"
)

// archiveLinkTTL bounds the validity of presigned audit links written to
// the log. Local storage ignores it.
const archiveLinkTTL = 24 * time.Hour

// Uploader is the slice of the analytics client the importer needs.
type Uploader interface {
	UploadExcel(ctx context.Context, token, filename string, file io.Reader) (*analytics.UploadResponse, error)
	RevertBatch(ctx context.Context, token, batchID string) error
}

// Importer validates, archives and forwards spreadsheet uploads, and
// tracks the resulting batch on the session so it can be reverted.
type Importer struct {
	client   Uploader
	store    storage.Storage
	sessions service.SessionService
	maxBytes int64
	logger   *slog.Logger
}

func New(client Uploader, store storage.Storage, sessions service.SessionService, maxBytes int64, logger *slog.Logger) *Importer {
	if maxBytes == 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &Importer{
		client:   client,
		store:    store,
		sessions: sessions,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Upload runs the full import pipeline for one spreadsheet:
//
//  1. file name and size checks
//  2. structural validation (must open as a real workbook)
//  3. archival to object storage for later audit
//  4. forwarding to the analytics backend
//  5. recording the batch id on the session
//
// A failed archive does not fail the import; a failed forward does.
func (im *Importer) Upload(ctx context.Context, sess *domain.Session, filename, contentType string, file io.Reader) (*Result, error) {
	const op = "importer.Upload"

	if !storage.IsSpreadsheetFilename(filename) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "Envie um arquivo .xlsx.")
	}
	if contentType != "" && !storage.IsAllowedSpreadsheetType(contentType) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "Tipo de arquivo não suportado.")
	}

	data, err := io.ReadAll(io.LimitReader(file, im.maxBytes+1))
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}
	if int64(len(data)) > im.maxBytes {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Errorf(domain.ETOOLARGE, op, "Arquivo excede o limite de %d MB.", im.maxBytes/(1024*1024))
	}

	// The backend does full schema validation; this only rejects files
	// that are not workbooks at all before they leave the building.
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "O arquivo não é uma planilha válida.")
	}
	if len(wb.GetSheetList()) == 0 {
		wb.Close()
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "A planilha não contém abas.")
	}
	wb.Close()

	im.archive(ctx, filename, contentType, data)

	resp, err := im.client.UploadExcel(ctx, sess.APIToken, filename, bytes.NewReader(data))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	result := Classify(resp)
	if !result.Inserted() {
		metrics.UploadsTotal.WithLabelValues("empty").Inc()
		return &result, nil
	}

	if result.BatchID != "" {
		if err := im.sessions.SetLastBatch(ctx, sess.ID, result.BatchID); err != nil {
			// The import itself succeeded; losing the batch id only
			// disables the revert button.
			im.logger.Error("failed to record batch id", "error", err, "batch_id", result.BatchID)
		}
	}

	metrics.UploadsTotal.WithLabelValues("success").Inc()
	metrics.UploadedRecords.Add(float64(result.Total))
	im.logger.Info("spreadsheet imported",
		"filename", filename,
		"batch_id", result.BatchID,
		"records", result.Total,
	)
	return &result, nil
}

// Revert discards the session's most recent batch on the backend. The
// recorded batch id is cleared only when the backend confirms; a failed
// revert keeps it so the user can retry.
func (im *Importer) Revert(ctx context.Context, sess *domain.Session) error {
	const op = "importer.Revert"

	if sess.LastBatchID == "" {
		return domain.Invalid(op, "Nenhum lote para reverter.")
	}

	if err := im.client.RevertBatch(ctx, sess.APIToken, sess.LastBatchID); err != nil {
		metrics.RevertsTotal.WithLabelValues("failure").Inc()
		return err
	}

	if err := im.sessions.ClearLastBatch(ctx, sess.ID); err != nil {
		im.logger.Error("failed to clear batch id", "error", err, "batch_id", sess.LastBatchID)
	}

	metrics.RevertsTotal.WithLabelValues("success").Inc()
	im.logger.Info("batch reverted", "batch_id", sess.LastBatchID)
	return nil
}

// archive stores a copy of the upload. Best effort: an archive failure is
// logged, never surfaced.
func (im *Importer) archive(ctx context.Context, filename, contentType string, data []byte) {
	if im.store == nil {
		return
	}
	key := storage.UploadKey(filename)
	err := im.store.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: storage.DetectContentType(contentType, filename, nil),
		MaxSize:     im.maxBytes,
	})
	if err != nil {
		im.logger.Error("failed to archive upload", "error", err, "key", key)
		return
	}

	// The audit link goes into the log so an operator can pull the exact
	// file that produced a batch without touching the bucket by hand.
	link, err := im.store.URL(ctx, key, archiveLinkTTL)
	if err != nil {
		im.logger.Info("upload archived", "key", key, "bytes", len(data))
		return
	}
	im.logger.Info("upload archived", "key", key, "bytes", len(data), "url", link)
}
