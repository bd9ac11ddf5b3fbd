package usecase

import (
	"context"
	"errors"
	"log/slog"

	otpentity "github.com/shandysiswandi/otpgate/internal/otp/entity"
	otpuc "github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type RegisterVerifyInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegisterVerify consumes the registration code and activates the account.
func (s *Usecase) RegisterVerify(ctx context.Context, in RegisterVerifyInput) error {
	ctx, span := s.startSpan(ctx, "RegisterVerify")
	defer span.End()

	email := otpentity.NormalizeSubject(in.Email)

	if err := s.otp.Verify(ctx, otpuc.VerifyInput{Subject: email, Code: in.Code}); err != nil {
		return err
	}

	now := s.clock.Now()
	activated, err := s.repoDB.MarkVerified(ctx, email, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark user verified", "email", email, "error", err)
		return goerror.NewServer(err)
	}
	if !activated {
		// Valid code for a subject without a pending account, e.g. issued through /otp/issue.
		slog.WarnContext(ctx, "verified email has no unverified account", "email", email)
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, email, false)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishUserVerified(ctx, UserVerifiedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		VerifiedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user verified", "user_id", user.ID, "error", err)
	}

	return nil
}
