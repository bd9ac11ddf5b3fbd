package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
)

type ConsumeUserVerifiedInput struct {
	UserID int64  `validate:"required,gt=0"`
	Email  string `validate:"required,email"`
	Name   string
}

// ConsumeUserVerified sends the welcome email for a freshly activated account.
func (s *Usecase) ConsumeUserVerified(ctx context.Context, in ConsumeUserVerifiedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserVerified")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "invalid user verified payload", "user_id", in.UserID, "error", err)
		return goerror.NewInvalidInput(err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "User"
	}

	data := s.baseEmailTemplateData()
	data["name"] = name
	data["email"] = in.Email

	body, err := s.renderTemplate(s.welcome, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render welcome email", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  "Welcome to " + s.appName,
		HTMLBody: body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "user_id", in.UserID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "welcome email sent", "user_id", in.UserID)
	return nil
}
