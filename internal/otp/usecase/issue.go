package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type IssueInput struct {
	Subject string `json:"subject" validate:"required,email,max=254"`
	Name    string `json:"name" validate:"max=100"`
	Purpose string `json:"purpose" validate:"max=50"`
}

type IssueOutput struct {
	Subject   string
	ExpiresIn int64 // seconds
}

// Issue creates a code for the subject and emails it.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	return s.issueAndDeliver(ctx, in, entity.Purpose(in.Purpose).Ensure(), s.manager.Issue)
}

type ResendInput struct {
	Subject string `json:"subject" validate:"required,email,max=254"`
	Name    string `json:"name" validate:"max=100"`
}

// Resend replaces the pending code with a new one and emails it.
func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	return s.issueAndDeliver(ctx, IssueInput{Subject: in.Subject, Name: in.Name}, entity.PurposeResend, s.manager.Resend)
}

type issueFunc func(ctx context.Context, subject string) (entity.Record, error)

func (s *Usecase) issueAndDeliver(ctx context.Context, in IssueInput, purpose entity.Purpose, issue issueFunc) (*IssueOutput, error) {
	in.Subject = entity.NormalizeSubject(in.Subject)
	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := issue(ctx, in.Subject)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue otp", "subject", in.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.delivery.Deliver(ctx, rec.Subject, rec.Code, entity.DeliveryContext{Name: in.Name, Purpose: purpose}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "subject", rec.Subject, "purpose", purpose.String(), "error", err)

		if s.rollback {
			if _, derr := s.manager.Discard(ctx, rec); derr != nil {
				slog.WarnContext(ctx, "failed to discard undelivered otp", "subject", rec.Subject, "error", derr)
			}
		}

		return nil, goerror.NewDelivery(err, "Failed to send verification code")
	}

	slog.InfoContext(ctx, "otp delivered", "subject", rec.Subject, "purpose", purpose.String())

	return &IssueOutput{
		Subject:   rec.Subject,
		ExpiresIn: int64(rec.ExpiresIn(rec.IssuedAt).Seconds()),
	}, nil
}
