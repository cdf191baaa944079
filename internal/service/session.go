// Package service contains the business logic layer.
//
// Services orchestrate interactions between the session store, the
// analytics backend, and domain logic. They are responsible for:
// - Input validation
// - Error translation (store/backend errors -> domain errors)
// - Session lifecycle rules
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
	"github.com/joaobaungartner/goncalves-frontend/internal/metrics"
	"github.com/joaobaungartner/goncalves-frontend/internal/repository"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// SessionIDBytes is the number of random bytes for session ids.
	// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
	SessionIDBytes = 32

	// ExpirySweepInterval is how often expired sessions are purged.
	ExpirySweepInterval = 15 * time.Minute
)

// =============================================================================
// Interface Definition
// =============================================================================

// TokenAuthenticator is the slice of the analytics client the session
// service needs. It keeps the service testable without real HTTP.
type TokenAuthenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// SessionService defines the interface for session-related operations.
type SessionService interface {
	// Login authenticates against the analytics backend and creates a
	// session carrying the returned bearer token.
	// Returns domain.EUNAUTHORIZED for rejected credentials.
	Login(ctx context.Context, username, password string) (*domain.Session, error)

	// Logout deletes a session. Idempotent: an unknown id is not an error.
	Logout(ctx context.Context, id string) error

	// GetByID retrieves a live session. Expired sessions are deleted on
	// sight and reported as domain.EUNAUTHORIZED.
	GetByID(ctx context.Context, id string) (*domain.Session, error)

	// SetLastBatch records the batch id of the most recent upload.
	SetLastBatch(ctx context.Context, id, batchID string) error

	// ClearLastBatch forgets the recorded batch id after a revert.
	ClearLastBatch(ctx context.Context, id string) error
}

// =============================================================================
// Implementation
// =============================================================================

type sessionService struct {
	store    repository.SessionStore
	auth     TokenAuthenticator
	duration time.Duration
	logger   *slog.Logger
}

// NewSessionService creates a session service backed by the given store.
func NewSessionService(store repository.SessionStore, auth TokenAuthenticator, duration time.Duration, logger *slog.Logger) SessionService {
	if duration == 0 {
		duration = 24 * time.Hour
	}
	return &sessionService{
		store:    store,
		auth:     auth,
		duration: duration,
		logger:   logger,
	}
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	const op = "service.sessionService.Login"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Invalid(op, "Informe usuário e senha.")
	}

	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, err
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        id,
		APIToken:  token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.duration),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	metrics.ActiveSessions.Inc()
	s.logger.Info("session created", "session_id", id[:8], "expires_at", sess.ExpiresAt)
	return sess, nil
}

func (s *sessionService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil
		}
		return err
	}
	metrics.ActiveSessions.Dec()
	s.logger.Info("session deleted", "session_id", id[:min(8, len(id))])
	return nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	const op = "service.sessionService.GetByID"

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.Unauthorized(op, "Sessão inválida.")
		}
		return nil, err
	}
	if sess.IsExpired() {
		// Best effort cleanup; the sweeper catches stragglers.
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, domain.Unauthorized(op, "Sessão expirada.")
	}
	return sess, nil
}

func (s *sessionService) SetLastBatch(ctx context.Context, id, batchID string) error {
	return s.store.SetLastBatch(ctx, id, batchID)
}

func (s *sessionService) ClearLastBatch(ctx context.Context, id string) error {
	return s.store.SetLastBatch(ctx, id, "")
}

// =============================================================================
// Expiry Sweeper
// =============================================================================

// SweepExpired periodically purges expired sessions until ctx is done.
// Run it in its own goroutine from main.
func SweepExpired(ctx context.Context, store repository.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions purged", "count", n)
			}
		}
	}
}

// =============================================================================
// Helpers
// =============================================================================

func generateSessionID() (string, error) {
	b := make([]byte, SessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
