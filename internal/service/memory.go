package service

import (
	"context"
	"log"
	"strings"
	"time"

	"core/internal/model"
)

const summaryPrompt = "Summarize the conversation in 5-8 sentences covering goals, preferences, constraints, city, budget, and timeline. Output plain text only."

// SessionStore is the narrow persistence contract the memory manager needs:
// upsert-session, insert-turn, read-recent-turns, upsert-summary.
type SessionStore interface {
	UpsertSession(ctx context.Context, id, lang string, startedAt, expiresAt time.Time) error
	InsertTurn(ctx context.Context, sessionID, role, content string) error
	RecentTurns(ctx context.Context, sessionID string, n int) ([]model.Turn, error)
	UpsertSummary(ctx context.Context, sessionID, summary string) error
	GetSummary(ctx context.Context, sessionID string) (string, error)
}

// MemoryService keeps bounded conversational state: sessions with a 24h
// expiry window, an append-only turn log, and a rolling summary maintained by
// a background worker so summarization never delays the turn that triggered
// it.
type MemoryService struct {
	store   SessionStore
	llm     CompletionClient
	ttl     time.Duration
	window  int
	timeout timeoutFn

	queue chan string
	done  chan struct{}
}

// NewMemoryService creates the manager and starts its summarization worker.
// Call Close to drain and stop the worker.
func NewMemoryService(store SessionStore, llm CompletionClient, ttl time.Duration, window int, timeout timeoutFn) *MemoryService {
	if ttl <= 0 {
		ttl = model.SessionTTL
	}
	if window <= 0 {
		window = 12
	}
	if timeout == nil {
		timeout = noTimeout
	}
	s := &MemoryService{
		store:   store,
		llm:     llm,
		ttl:     ttl,
		window:  window,
		timeout: timeout,
		queue:   make(chan string, 64),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

// EnsureSession upserts the session with a fresh expiry window. Idempotent;
// safe to call every turn.
func (s *MemoryService) EnsureSession(ctx context.Context, id, lang string) error {
	if lang == "" {
		lang = "en"
	}
	now := time.Now().UTC()
	return s.store.UpsertSession(ctx, id, lang, now, now.Add(s.ttl))
}

// LogTurn appends one turn to the session's log.
func (s *MemoryService) LogTurn(ctx context.Context, sessionID, role, content string) error {
	return s.store.InsertTurn(ctx, sessionID, role, content)
}

// QueueSummarize schedules a best-effort summary refresh. Non-blocking: when
// the queue is full the request is dropped, which is fine because the next
// turn re-enqueues.
func (s *MemoryService) QueueSummarize(sessionID string) {
	select {
	case s.queue <- sessionID:
	default:
		log.Printf("summary queue full, dropping refresh for session %s", sessionID)
	}
}

// Summary returns the session's rolling digest, "" when none exists yet.
func (s *MemoryService) Summary(ctx context.Context, sessionID string) (string, error) {
	return s.store.GetSummary(ctx, sessionID)
}

// Close stops the background worker.
func (s *MemoryService) Close() {
	close(s.done)
}

func (s *MemoryService) worker() {
	for {
		select {
		case sessionID := <-s.queue:
			s.summarize(sessionID)
		case <-s.done:
			return
		}
	}
}

// summarize reads the recent turn window, asks for a fixed-length digest and
// upserts it. Every failure here is logged and swallowed; summarization is a
// side effect and must never fail a turn that already completed.
func (s *MemoryService) summarize(sessionID string) {
	if s.llm == nil || !s.llm.IsEnabled() {
		return
	}

	ctx, cancel := s.timeout(context.Background())
	defer cancel()

	turns, err := s.store.RecentTurns(ctx, sessionID, s.window)
	if err != nil {
		log.Printf("summary skipped, failed to load turns for %s: %v", sessionID, err)
		return
	}

	var transcript strings.Builder
	for _, turn := range turns {
		transcript.WriteString(turn.Role)
		transcript.WriteString(": ")
		transcript.WriteString(turn.Content)
		transcript.WriteString("\n")
	}
	if transcript.Len() == 0 {
		return
	}

	summary, err := s.llm.ChatText(ctx, []ChatMessage{
		{Role: "system", Content: summaryPrompt},
		{Role: "user", Content: transcript.String()},
	}, 220)
	if err != nil {
		log.Printf("summary generation failed for %s: %v", sessionID, err)
		return
	}
	if strings.TrimSpace(summary) == "" {
		return
	}

	if err := s.store.UpsertSummary(ctx, sessionID, summary); err != nil {
		log.Printf("summary write failed for %s: %v", sessionID, err)
	}
}
