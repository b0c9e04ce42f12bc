package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

type Store interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	// SaveSession persists page and answers of an in-progress session.
	SaveSession(ctx context.Context, s Session) error
	// MarkSubmitted flips the session to submitted exactly once; a second
	// call returns ErrAlreadySubmitted.
	MarkSubmitted(ctx context.Context, id string, at time.Time) error
	// Reopen undoes MarkSubmitted when the submission could not be recorded.
	Reopen(ctx context.Context, id string) error
	ListSessions(ctx context.Context, opts ListOpts) ([]Session, error)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() Store {
	return &memoryStore{sessions: map[string]Session{}}
}

func (m *memoryStore) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Answers == nil {
		s.Answers = grading.AnswerSet{}
	}
	if s.Status == "" {
		s.Status = StatusInProgress
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return copySession(s), nil
}

func (m *memoryStore) SaveSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if cur.Status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	cur.Page = s.Page
	cur.Answers = s.Answers.Clone()
	m.sessions[s.ID] = cur
	return nil
}

func (m *memoryStore) MarkSubmitted(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if cur.Status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	cur.Status = StatusSubmitted
	cur.SubmittedAt = &at
	m.sessions[id] = cur
	return nil
}

func (m *memoryStore) Reopen(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	cur.Status = StatusInProgress
	cur.SubmittedAt = nil
	m.sessions[id] = cur
	return nil
}

func (m *memoryStore) ListSessions(_ context.Context, opts ListOpts) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if opts.StudentID != "" && s.StudentID != opts.StudentID {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, copySession(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	offset := max(opts.Offset, 0)
	if offset > len(out) {
		return []Session{}, nil
	}
	out = out[offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func copySession(s Session) Session {
	s.Answers = s.Answers.Clone()
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		s.SubmittedAt = &at
	}
	return s
}
