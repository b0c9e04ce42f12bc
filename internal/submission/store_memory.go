package submission

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     Clock
}

func NewMemoryStore() Store {
	return &memoryStore{records: map[string]Record{}, now: time.Now}
}

func (m *memoryStore) Create(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	r.UpdatedAt = now
	m.records[r.ID] = r
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		if opts.StudentID != "" && r.StudentID != opts.StudentID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func page(rs []Record, limit, offset int) []Record {
	offset = max(offset, 0)
	if offset > len(rs) {
		return []Record{}
	}
	rs = rs[offset:]
	if limit > 0 && limit < len(rs) {
		rs = rs[:limit]
	}
	return rs
}

func (m *memoryStore) update(id string, fn func(*Record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	fn(&r)
	r.UpdatedAt = m.now()
	m.records[id] = r
	return nil
}

func (m *memoryStore) MarkPending(_ context.Context, id string) error {
	return m.update(id, func(r *Record) { r.Status = StatusPending })
}

func (m *memoryStore) MarkOK(_ context.Context, id string) error {
	return m.update(id, func(r *Record) { r.Status, r.LastError = StatusOK, "" })
}

func (m *memoryStore) MarkFailed(_ context.Context, id, lastErr string) error {
	return m.update(id, func(r *Record) {
		r.Status, r.LastError, r.Retries = StatusFailed, lastErr, r.Retries+1
	})
}
