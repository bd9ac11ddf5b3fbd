package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
)

type uc interface {
	ConsumeUserVerified(ctx context.Context, in usecase.ConsumeUserVerifiedInput) error
}
