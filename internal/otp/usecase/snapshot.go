package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type SnapshotItem struct {
	Subject   string
	Code      string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

type SnapshotOutput struct {
	Items []SnapshotItem
	Count int
}

// Snapshot lists the pending codes for local debugging.
func (s *Usecase) Snapshot(ctx context.Context) (*SnapshotOutput, error) {
	ctx, span := s.startSpan(ctx, "Snapshot")
	defer span.End()

	recs, err := s.manager.Snapshot(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list pending otp", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	items := make([]SnapshotItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, SnapshotItem{
			Subject:   rec.Subject,
			Code:      rec.Code,
			ExpiresAt: rec.ExpiresAt,
			ExpiresIn: rec.ExpiresIn(now),
		})
	}

	return &SnapshotOutput{Items: items, Count: len(items)}, nil
}
