package repository

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/joaobaungartner/goncalves-frontend/internal/domain"
)

// PostgresSessionStore persists sessions in the sessions table created by
// the embedded migrations.
type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Create(ctx context.Context, sess *domain.Session) error {
	const op = "repository.PostgresSessionStore.Create"
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, api_token, last_batch_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.APIToken, nullString(sess.LastBatchID), sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return domain.Internal(err, op, "")
	}
	return nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	const op = "repository.PostgresSessionStore.Get"
	var (
		sess    domain.Session
		batchID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, api_token, last_batch_id, created_at, expires_at
		FROM sessions WHERE id = $1`,
		id,
	).Scan(&sess.ID, &sess.APIToken, &batchID, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(op, "sessão não encontrada")
	}
	if err != nil {
		return nil, domain.Internal(err, op, "")
	}
	sess.LastBatchID = batchID.String
	return &sess, nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	const op = "repository.PostgresSessionStore.Delete"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return domain.Internal(err, op, "")
	}
	return nil
}

func (s *PostgresSessionStore) SetLastBatch(ctx context.Context, id, batchID string) error {
	const op = "repository.PostgresSessionStore.SetLastBatch"
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET last_batch_id = $2 WHERE id = $1`,
		id, nullString(batchID),
	)
	if err != nil {
		return domain.Internal(err, op, "")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound(op, "sessão não encontrada")
	}
	return nil
}

func (s *PostgresSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "repository.PostgresSessionStore.DeleteExpired"
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, domain.Internal(err, op, "")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Internal(err, op, "")
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
