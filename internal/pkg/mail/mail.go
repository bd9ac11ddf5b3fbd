package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNoRecipients is returned when To, Cc and Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when neither Message.From nor the configured From is set.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrHostPortRequired is returned when a network driver has no Host or Port.
	ErrHostPortRequired = errors.New("mail: host and port are required")
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From overrides the configured default sender.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Driver names accepted by New.
const (
	DriverSMTP   = "smtp"
	DriverGomail = "gomail"
	DriverLog    = "log"
)

// Config configures every driver; network drivers need Host and Port.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether a real network driver can be built from cfg.
func (c Config) Configured() bool {
	return c.Driver != DriverLog && c.Host != "" && c.Port != 0 && c.From != ""
}

// New builds the Mail driver named by cfg.Driver; empty means smtp.
func New(cfg Config) (Mail, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSMTP:
		return NewSMTP(cfg)
	case DriverGomail:
		return NewGomail(cfg)
	case DriverLog:
		return NewLog(cfg.From), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func recipients(msg Message) []string {
	all := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	all = append(all, msg.To...)
	all = append(all, msg.Cc...)
	return append(all, msg.Bcc...)
}

func sender(msg Message, fallback string) (string, error) {
	if msg.From != "" {
		return msg.From, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoSender
}
