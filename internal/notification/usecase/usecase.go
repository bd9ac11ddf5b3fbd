package usecase

import (
	"bytes"
	"context"
	"html/template"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	appName   string
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	ins       instrument.Instrumentation
	welcome   *template.Template
}

type Dependency struct {
	AppName    string
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}
	appName := dep.AppName
	if appName == "" {
		appName = "otpgate"
	}

	return &Usecase{
		appName:   appName,
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		ins:       ins,
		welcome:   template.Must(template.New("welcome").Option("missingkey=zero").Parse(welcomeTemplate)),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) renderTemplate(t *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"app_name": s.appName,
		"year":     s.clock.Now().Format("2006"),
	}
}

const welcomeTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Welcome to {{.app_name}}, {{.name}}!</h2>
    <p>Your email address <strong>{{.email}}</strong> has been verified and your account is now active.</p>
    <p>You can sign in at any time with the password you chose during registration.</p>
    <p style="color: #888; font-size: 12px;">&copy; {{.year}} {{.app_name}}</p>
  </div>
</body>
</html>`
