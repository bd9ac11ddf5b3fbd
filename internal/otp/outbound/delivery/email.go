package delivery

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const defaultName = "User"

type EmailConfig struct {
	AppName string
	// TTL is only used to word the expiry in the message.
	TTL time.Duration
	// RatePerSecond and Burst throttle outbound sends; zero disables it.
	RatePerSecond float64
	Burst         int
}

// Email sends codes through a mail driver.
type Email struct {
	client  mail.Mail
	limiter *rate.Limiter
	clock   clock.Clocker
	ins     instrument.Instrumentation
	appName string
	ttl     time.Duration
}

func NewEmail(client mail.Mail, cfg EmailConfig, clk clock.Clocker, ins instrument.Instrumentation) *Email {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1))
	}
	if cfg.AppName == "" {
		cfg.AppName = "otpgate"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Email{
		client:  client,
		limiter: limiter,
		clock:   clk,
		ins:     ins,
		appName: cfg.AppName,
		ttl:     cfg.TTL,
	}
}

// Deliver renders and sends the code to subject. Errors carry the transport
// reason unchanged.
func (e *Email) Deliver(ctx context.Context, subject, code string, dc entity.DeliveryContext) error {
	ctx, span := e.ins.Tracer("otp.outbound.delivery").Start(ctx, "Deliver")
	defer span.End()

	purpose := dc.Purpose.Ensure()
	span.SetAttributes(attribute.String("otp.purpose", purpose.String()))

	if err := e.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delivery throttled: %w", err)
	}

	msg, err := e.message(subject, code, dc.Name, purpose)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := e.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (e *Email) message(subject, code, name string, purpose entity.Purpose) (mail.Message, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}

	data := codeTemplateData{
		AppName:   e.appName,
		Name:      name,
		Purpose:   purpose.String(),
		Code:      code,
		ExpiresIn: humanMinutes(e.ttl),
		SentAt:    e.clock.Now().UTC().Format(time.RFC1123),
		Resend:    purpose == entity.PurposeResend,
	}

	var html, text bytes.Buffer
	if err := htmlCodeTemplate.Execute(&html, data); err != nil {
		return mail.Message{}, fmt.Errorf("render html body: %w", err)
	}
	if err := textCodeTemplate.Execute(&text, data); err != nil {
		return mail.Message{}, fmt.Errorf("render text body: %w", err)
	}

	title := "Your Verification Code: " + code
	if data.Resend {
		title = "Resent Verification Code: " + code
	}

	return mail.Message{
		To:       []string{subject},
		Subject:  title,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m <= 1 {
		return "1 minute"
	}
	return strconv.Itoa(m) + " minutes"
}
