// Package lifecycle owns the subject-to-code mapping: it issues, verifies and
// expires one-time codes and guarantees each record is consumed at most once.
//
// The manager never delivers codes; callers receive the issued record and
// hand the code to a delivery channel themselves.
package lifecycle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
)

// DefaultTTL is the validity window of an issued code.
const DefaultTTL = 300 * time.Second

// ErrEmptySubject is returned when the normalized subject is empty.
var ErrEmptySubject = errors.New("lifecycle: subject is required")

// Store persists at most one record per subject.
//
// Get returns goerror.ErrNotFound when no record exists. DeleteIfVersion
// removes the record only when its version still matches and reports whether
// it did.
type Store interface {
	Get(ctx context.Context, subject string) (entity.Record, error)
	Set(ctx context.Context, rec entity.Record) error
	Delete(ctx context.Context, subject string) error
	DeleteIfVersion(ctx context.Context, subject, version string) (bool, error)
	List(ctx context.Context) ([]entity.Record, error)
}

// expirer is implemented by stores without native key expiry.
type expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type Dependency struct {
	Store     Store
	Generator otp.Generator
	Version   uid.StringID
	Clock     clock.Clocker
	// TTL defaults to DefaultTTL when zero or negative.
	TTL time.Duration
}

type Manager struct {
	store   Store
	gen     otp.Generator
	version uid.StringID
	clock   clock.Clocker
	ttl     time.Duration
	locks   *keyMutex
}

func New(dep Dependency) *Manager {
	ttl := dep.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Manager{
		store:   dep.Store,
		gen:     dep.Generator,
		version: dep.Version,
		clock:   dep.Clock,
		ttl:     ttl,
		locks:   newKeyMutex(),
	}
}

// TTL returns the configured validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a fresh code for subject and replaces any pending record.
// The returned record carries the plain code for delivery.
func (m *Manager) Issue(ctx context.Context, subject string) (entity.Record, error) {
	subject = entity.NormalizeSubject(subject)
	if subject == "" {
		return entity.Record{}, ErrEmptySubject
	}

	code, err := m.gen.Generate()
	if err != nil {
		return entity.Record{}, err
	}

	unlock := m.locks.Lock(subject)
	defer unlock()

	now := m.clock.Now()
	rec := entity.Record{
		Subject:   subject,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
		Version:   m.version.Generate(),
	}

	if err := m.store.Set(ctx, rec); err != nil {
		return entity.Record{}, fmt.Errorf("lifecycle: store record: %w", err)
	}

	return rec, nil
}

// Resend behaves exactly like Issue: the previous code stops working.
func (m *Manager) Resend(ctx context.Context, subject string) (entity.Record, error) {
	return m.Issue(ctx, subject)
}

// Verify checks code against the live record for subject. A match consumes
// the record; a mismatch leaves it in place.
func (m *Manager) Verify(ctx context.Context, subject, code string) (entity.Result, error) {
	subject = entity.NormalizeSubject(subject)
	if subject == "" {
		return entity.ResultNotFoundOrExpired, nil
	}

	unlock := m.locks.Lock(subject)
	defer unlock()

	rec, err := m.store.Get(ctx, subject)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.ResultNotFoundOrExpired, nil
	}
	if err != nil {
		return entity.ResultNotFoundOrExpired, fmt.Errorf("lifecycle: load record: %w", err)
	}

	if rec.Expired(m.clock.Now()) {
		if _, err := m.store.DeleteIfVersion(ctx, subject, rec.Version); err != nil {
			slog.WarnContext(ctx, "failed to delete expired otp record", "subject", subject, "error", err)
		}
		return entity.ResultNotFoundOrExpired, nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(strings.TrimSpace(code))) != 1 {
		return entity.ResultMismatch, nil
	}

	deleted, err := m.store.DeleteIfVersion(ctx, subject, rec.Version)
	if err != nil {
		return entity.ResultNotFoundOrExpired, fmt.Errorf("lifecycle: consume record: %w", err)
	}
	if !deleted {
		return entity.ResultNotFoundOrExpired, nil
	}

	return entity.ResultValid, nil
}

// Discard removes rec only if it is still the live record for its subject.
func (m *Manager) Discard(ctx context.Context, rec entity.Record) (bool, error) {
	unlock := m.locks.Lock(rec.Subject)
	defer unlock()

	return m.store.DeleteIfVersion(ctx, rec.Subject, rec.Version)
}

// Snapshot lists the unexpired records ordered by subject.
func (m *Manager) Snapshot(ctx context.Context) ([]entity.Record, error) {
	recs, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	recs = slices.DeleteFunc(recs, func(r entity.Record) bool { return r.Expired(now) })
	slices.SortFunc(recs, func(a, b entity.Record) int { return strings.Compare(a.Subject, b.Subject) })

	return recs, nil
}

// Reap sweeps expired records from stores that cannot expire keys on their own.
func (m *Manager) Reap(ctx context.Context) (int, error) {
	exp, ok := m.store.(expirer)
	if !ok {
		return 0, nil
	}
	return exp.DeleteExpired(ctx, m.clock.Now())
}

// RunReaper calls Reap every interval until ctx is done. Sweep failures are
// logged and the loop keeps going.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) error {
	if _, ok := m.store.(expirer); !ok || interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := m.Reap(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to sweep expired otp records", "error", err)
				continue
			}
			if n > 0 {
				slog.DebugContext(ctx, "expired otp records swept", "count", n)
			}
		}
	}
}
