package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

// Gomail sends mail through gopkg.in/gomail.v2, which negotiates implicit TLS
// on port 465 and STARTTLS elsewhere.
type Gomail struct {
	dialer      *gomail.Dialer
	defaultFrom string
}

// NewGomail constructs a gomail-backed sender.
func NewGomail(cfg Config) (*Gomail, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrHostPortRequired
	}

	return &Gomail{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		defaultFrom: cfg.From,
	}, nil
}

// Send delivers msg. gomail has no context support, so ctx is only checked
// before dialing.
func (g *Gomail) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := g.message(msg)
	if err != nil {
		return err
	}

	return g.dialer.DialAndSend(m)
}

func (g *Gomail) message(msg Message) (*gomail.Message, error) {
	if len(recipients(msg)) == 0 {
		return nil, ErrNoRecipients
	}

	from, err := sender(msg, g.defaultFrom)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("Subject", msg.Subject)
	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	return m, nil
}

// Close implements io.Closer; the dialer opens a connection per send.
func (g *Gomail) Close() error {
	return nil
}
