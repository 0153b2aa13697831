package intake

import (
	"context"
	"sync"
	"time"
)

// Step is the intake dialogue position for one chat.
type Step int

const (
	StepNone Step = iota
	StepAwaitingName
	StepAwaitingContact
	StepAwaitingIssue
)

func (s Step) String() string {
	switch s {
	case StepAwaitingName:
		return "awaiting_name"
	case StepAwaitingContact:
		return "awaiting_contact"
	case StepAwaitingIssue:
		return "awaiting_issue"
	default:
		return "none"
	}
}

// Session is the explicit conversation state for one chat: the current step
// plus the partial lead captured so far. It is the source of truth; the
// reply-chain markers embedded in prompts remain only as a recovery hint.
type Session struct {
	ChatID    int64
	Step      Step
	Name      string
	Contact   string
	UpdatedAt time.Time
}

// Store keeps intake sessions keyed by chat id. Implementations expire
// entries after a TTL; an expired or absent session reads as nil.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, chatID int64) error
	Close() error
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]Session
	now      func() time.Time
}

// NewMemoryStore creates a memory store expiring sessions after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[int64]Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, chatID)
		return nil, nil
	}

	copied := sess
	return &copied, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sess
	stored.UpdatedAt = s.now()
	s.sessions[stored.ChatID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Sweep drops all expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := s.now().Add(-s.ttl)
	for chatID, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, chatID)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given cadence until ctx is done.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
