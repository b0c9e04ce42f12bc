// Package guard blocks a second submission from the same student or the same device.
package guard

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrAlreadySubmitted = errors.New("submission not permitted: an attempt has already been recorded")

type Kind string

const (
	KindStudent Kind = "student"
	KindDevice  Kind = "device"
)

// Locker records submission locks. An empty device ID is never locked.
//
// Check is advisory and only used to fail fast. Acquire is the gate: it takes
// the student and device locks together, or none of them, and returns
// ErrAlreadySubmitted when either is already held.
type Locker interface {
	Check(ctx context.Context, studentID, deviceID string) error
	Acquire(ctx context.Context, studentID, deviceID string) error
	Release(ctx context.Context, studentID, deviceID string) error
}

type lockKey struct {
	kind Kind
	key  string
}

func keys(studentID, deviceID string) []lockKey {
	out := make([]lockKey, 0, 2)
	if s := strings.TrimSpace(studentID); s != "" {
		out = append(out, lockKey{KindStudent, s})
	}
	if d := strings.TrimSpace(deviceID); d != "" {
		out = append(out, lockKey{KindDevice, d})
	}
	return out
}

type MemoryLocker struct {
	mu    sync.RWMutex
	locks map[lockKey]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: map[lockKey]struct{}{}}
}

func (m *MemoryLocker) Check(_ context.Context, studentID, deviceID string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range keys(studentID, deviceID) {
		if _, ok := m.locks[k]; ok {
			return ErrAlreadySubmitted
		}
	}
	return nil
}

func (m *MemoryLocker) Acquire(_ context.Context, studentID, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ks := keys(studentID, deviceID)
	for _, k := range ks {
		if _, ok := m.locks[k]; ok {
			return ErrAlreadySubmitted
		}
	}
	for _, k := range ks {
		m.locks[k] = struct{}{}
	}
	return nil
}

func (m *MemoryLocker) Release(_ context.Context, studentID, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys(studentID, deviceID) {
		delete(m.locks, k)
	}
	return nil
}
