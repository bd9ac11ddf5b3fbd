package entity

import (
	"strings"
	"time"
)

// Record is the single live code bound to a subject.
type Record struct {
	Subject   string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Version identifies this record instance; conditional deletes compare it
	// so that a stale caller never removes a newer record.
	Version string
}

// Expired reports whether the validity window has closed at now. The boundary
// instant itself counts as expired.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// ExpiresIn is the remaining validity truncated to whole seconds, never negative.
func (r Record) ExpiresIn(now time.Time) time.Duration {
	d := r.ExpiresAt.Sub(now).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// NormalizeSubject trims and lower-cases an email subject. Every store access
// goes through the normalized form.
func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}
