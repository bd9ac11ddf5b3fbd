package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

// Memory keeps records in a process-local map. Expired records stay until a
// verify touches them or DeleteExpired sweeps them.
type Memory struct {
	mu      sync.RWMutex
	records map[string]entity.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]entity.Record)}
}

func (m *Memory) Get(_ context.Context, subject string) (entity.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[subject]
	if !ok {
		return entity.Record{}, goerror.ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Set(_ context.Context, rec entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Subject] = rec
	return nil
}

func (m *Memory) Delete(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, subject)
	return nil
}

func (m *Memory) DeleteIfVersion(_ context.Context, subject, version string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[subject]
	if !ok || rec.Version != version {
		return false, nil
	}

	delete(m.records, subject)
	return true, nil
}

func (m *Memory) List(_ context.Context) ([]entity.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

// DeleteExpired removes every record expired at now. Each record is checked
// under the write lock, so a record replaced by a fresh issue is never swept.
func (m *Memory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for subject, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, subject)
			n++
		}
	}
	return n, nil
}
