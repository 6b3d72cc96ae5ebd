package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"core/internal/model"

	"github.com/jmoiron/sqlx"
)

// SessionRepository persists chat sessions, turns and rolling summaries.
//
// Schema:
//
//	chat_sessions  (id PK, lang, started_at, expires_at)
//	chat_messages  (seq BIGSERIAL PK, session_id, role, content, created_at)
//	chat_summaries (session_id PK, summary, updated_at)
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// UpsertSession creates or refreshes a session. The upsert keeps the call
// idempotent per turn: re-invoking for the same id never creates a second row.
func (r *SessionRepository) UpsertSession(ctx context.Context, id, lang string, startedAt, expiresAt time.Time) error {
	query := `
		INSERT INTO chat_sessions (id, lang, started_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET lang = EXCLUDED.lang, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, id, lang, startedAt, expiresAt); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// InsertTurn appends one turn. There is no update or delete path; ordering is
// the insertion sequence.
func (r *SessionRepository) InsertTurn(ctx context.Context, sessionID, role, content string) error {
	query := `INSERT INTO chat_messages (session_id, role, content) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, sessionID, role, content); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// RecentTurns returns up to n most recent turns in insertion order.
func (r *SessionRepository) RecentTurns(ctx context.Context, sessionID string, n int) ([]model.Turn, error) {
	query := `
		SELECT session_id, role, content FROM (
			SELECT seq, session_id, role, content
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC
	`
	var turns []model.Turn
	if err := r.db.SelectContext(ctx, &turns, query, sessionID, n); err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	return turns, nil
}

// UpsertSummary writes the rolling session digest; at most one live row per
// session, last write wins.
func (r *SessionRepository) UpsertSummary(ctx context.Context, sessionID, summary string) error {
	query := `
		INSERT INTO chat_summaries (session_id, summary, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id) DO UPDATE SET summary = EXCLUDED.summary, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, summary); err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// GetSummary returns the current digest, or empty when none exists.
func (r *SessionRepository) GetSummary(ctx context.Context, sessionID string) (string, error) {
	var summary string
	query := `SELECT summary FROM chat_summaries WHERE session_id = $1`
	err := r.db.GetContext(ctx, &summary, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to load summary: %w", err)
	}
	return summary, nil
}
