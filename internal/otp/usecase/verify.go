package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type VerifyInput struct {
	Subject string `json:"subject" validate:"required,email,max=254"`
	Code    string `json:"code" validate:"required,otpcode"`
}

// Verify consumes the pending code when it matches.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Subject = entity.NormalizeSubject(in.Subject)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	res, err := s.manager.Verify(ctx, in.Subject, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp", "subject", in.Subject, "error", err)
		return goerror.NewServer(err)
	}

	switch res {
	case entity.ResultValid:
		slog.InfoContext(ctx, "otp verified", "subject", in.Subject)
		return nil
	case entity.ResultMismatch:
		slog.InfoContext(ctx, "otp mismatch", "subject", in.Subject)
		return goerror.NewBusiness("Invalid OTP", goerror.CodeBadRequest)
	default:
		slog.InfoContext(ctx, "otp not found or expired", "subject", in.Subject)
		return goerror.NewBusiness("OTP not found or expired", goerror.CodeBadRequest)
	}
}
