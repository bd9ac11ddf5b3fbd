package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	otpentity "github.com/shandysiswandi/otpgate/internal/otp/entity"
	otpuc "github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type RegisterResendInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// RegisterResend emails a fresh code to a pending account. Unknown or
// already verified emails succeed without sending anything.
func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = otpentity.NormalizeSubject(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email, false)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.InfoContext(ctx, "resend requested for unknown email", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.Status != entity.UserStatusUnverified {
		slog.InfoContext(ctx, "resend requested for verified account", "user_id", user.ID)
		return nil
	}

	if _, err := s.otp.Resend(ctx, otpuc.ResendInput{Subject: user.Email, Name: user.Name}); err != nil {
		return err
	}

	return nil
}
