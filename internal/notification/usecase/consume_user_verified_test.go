package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type mockMail struct {
	sent []mail.Message
	err  error
}

func (m *mockMail) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newUsecase(t *testing.T, m *mockMail) *Usecase {
	t.Helper()
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return NewNotification(Dependency{
		AppName:   "otpgate",
		Clock:     clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Validator: v,
		RepoMail:  m,
	})
}

func TestConsumeUserVerified(t *testing.T) {
	// Arrange
	m := &mockMail{}
	uc := newUsecase(t, m)

	// Act
	err := uc.ConsumeUserVerified(context.Background(), ConsumeUserVerifiedInput{
		UserID: 7,
		Email:  "ada@example.com",
		Name:   "<b>Ada</b>",
	})

	// Assert
	if err != nil {
		t.Fatalf("ConsumeUserVerified() error = %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent %d emails", len(m.sent))
	}
	msg := m.sent[0]
	if msg.To[0] != "ada@example.com" || msg.Subject != "Welcome to otpgate" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if strings.Contains(msg.HTMLBody, "<b>Ada</b>") || !strings.Contains(msg.HTMLBody, "&lt;b&gt;Ada&lt;/b&gt;") {
		t.Fatal("name must be HTML escaped")
	}
	if !strings.Contains(msg.HTMLBody, "2026") {
		t.Fatal("footer year missing")
	}
}

func TestConsumeUserVerifiedDefaultsName(t *testing.T) {
	m := &mockMail{}

	if err := newUsecase(t, m).ConsumeUserVerified(context.Background(), ConsumeUserVerifiedInput{UserID: 7, Email: "ada@example.com"}); err != nil {
		t.Fatalf("ConsumeUserVerified() error = %v", err)
	}

	if !strings.Contains(m.sent[0].HTMLBody, "Welcome to otpgate, User!") {
		t.Fatalf("unexpected body %s", m.sent[0].HTMLBody)
	}
}

func TestConsumeUserVerifiedInvalid(t *testing.T) {
	m := &mockMail{}

	err := newUsecase(t, m).ConsumeUserVerified(context.Background(), ConsumeUserVerifiedInput{UserID: 0, Email: "nope"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Type() != goerror.TypeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(m.sent) != 0 {
		t.Fatal("no email may be sent")
	}
}

func TestConsumeUserVerifiedMailFailure(t *testing.T) {
	cause := errors.New("smtp: 451 try later")
	m := &mockMail{err: cause}

	err := newUsecase(t, m).ConsumeUserVerified(context.Background(), ConsumeUserVerifiedInput{UserID: 7, Email: "ada@example.com"})

	if !errors.Is(err, cause) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
