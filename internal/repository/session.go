// Package repository persists browser sessions. Two implementations are
// provided: an in-memory store for single-instance deployments and a
// Postgres store for anything that needs sessions to survive restarts.
package repository

import (
	"context"

	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
)

// SessionStore is the persistence contract for sessions. Get must return
// a domain error with code ENOTFOUND when the id is unknown.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error

	// SetLastBatch records the batch id of the session's most recent
	// spreadsheet upload; an empty batchID clears it.
	SetLastBatch(ctx context.Context, id, batchID string) error

	// DeleteExpired removes every session past its expiry and returns
	// how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
