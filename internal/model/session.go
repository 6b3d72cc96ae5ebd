package model

import "time"

// SessionTTL is the passive expiry window of a conversation session.
const SessionTTL = 24 * time.Hour

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationSession is one chat session. It is upserted every turn and
// expires passively; ExpiresAt is always StartedAt + SessionTTL.
type ConversationSession struct {
	ID        string    `db:"id" json:"id"`
	Language  string    `db:"lang" json:"language"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Turn is one append-only message in a session, ordered by insertion.
type Turn struct {
	SessionID string `db:"session_id" json:"session_id"`
	Role      string `db:"role" json:"role"`
	Content   string `db:"content" json:"content"`
}

// SessionSummary is the rolling 5-8 sentence digest of a session; at most one
// live row per session.
type SessionSummary struct {
	SessionID string `db:"session_id" json:"session_id"`
	Summary   string `db:"summary" json:"summary"`
}
