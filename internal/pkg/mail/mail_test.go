package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{name: "default smtp", cfg: Config{Host: "localhost", Port: 1025}, want: "*mail.SMTP"},
		{name: "gomail", cfg: Config{Driver: "gomail", Host: "smtp.example.com", Port: 587}, want: "*mail.Gomail"},
		{name: "log", cfg: Config{Driver: "log"}, want: "*mail.Log"},
		{name: "smtp without host", cfg: Config{Driver: "smtp"}, wantErr: ErrHostPortRequired},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := typeName(m); got != tt.want {
				t.Fatalf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(m Mail) string {
	switch m.(type) {
	case *SMTP:
		return "*mail.SMTP"
	case *Gomail:
		return "*mail.Gomail"
	case *Log:
		return "*mail.Log"
	default:
		return "unknown"
	}
}

func TestConfigured(t *testing.T) {
	if (Config{Host: "h", Port: 25}).Configured() {
		t.Fatal("a config without sender is not configured")
	}
	if !(Config{Host: "h", Port: 25, From: "no-reply@example.com"}).Configured() {
		t.Fatal("expected configured")
	}
	if (Config{Driver: DriverLog, Host: "h", Port: 25, From: "x@y.z"}).Configured() {
		t.Fatal("the log driver never counts as configured")
	}
}

func TestBuildRawMultipart(t *testing.T) {
	raw := string(buildRaw("no-reply@example.com", Message{
		To:       []string{"ada@example.com"},
		Subject:  "Your Verification Code: 123456",
		TextBody: "code 123456",
		HTMLBody: "<b>123456</b>",
	}))

	for _, want := range []string{
		"From: no-reply@example.com\r\n",
		"To: ada@example.com\r\n",
		"Subject: Your Verification Code: 123456\r\n",
		"Content-Type: multipart/alternative; boundary=otpgate-boundary-",
		"Content-Type: text/plain; charset=UTF-8\r\n\r\ncode 123456",
		"Content-Type: text/html; charset=UTF-8\r\n\r\n<b>123456</b>",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("raw message missing %q:\n%s", want, raw)
		}
	}
}

func TestSMTPSendValidation(t *testing.T) {
	s, err := NewSMTP(Config{Host: "localhost", Port: 1025})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Send(context.Background(), Message{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@b.co"}}); !errors.Is(err, ErrNoSender) {
		t.Fatalf("expected ErrNoSender, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: []string{"a@b.co"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGomailMessage(t *testing.T) {
	g, err := NewGomail(Config{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	m, err := g.message(Message{To: []string{"ada@example.com"}, Subject: "Welcome", TextBody: "hi", HTMLBody: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("message() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"From: no-reply@example.com", "To: ada@example.com", "Subject: Welcome", "multipart/alternative", "<p>hi</p>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("message missing %q:\n%s", want, out)
		}
	}

	if _, err := g.message(Message{}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}

func TestLogSend(t *testing.T) {
	l := NewLog("no-reply@example.com")

	if err := l.Send(context.Background(), Message{To: []string{"ada@example.com"}, Subject: "x"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := l.Send(context.Background(), Message{}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}
