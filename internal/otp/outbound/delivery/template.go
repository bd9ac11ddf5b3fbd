package delivery

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

const htmlCode = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa;">
  <div style="background: white; border-radius: 10px; overflow: hidden;">
    <div style="background: {{if .Resend}}#17a2b8{{else}}#007bff{{end}}; color: white; padding: 30px 20px; text-align: center;">
      <h1 style="margin: 0;">{{if .Resend}}Code Resent{{else}}Email Verification{{end}}</h1>
      <p style="margin: 0; opacity: 0.9;">{{.AppName}}</p>
    </div>
    <div style="padding: 30px;">
      <p><strong>Hello {{.Name}},</strong></p>
      {{if .Resend}}<p>Here is your new verification code:</p>{{else}}<p>You requested a code for <strong>{{.Purpose}}</strong>. Please use the verification code below:</p>{{end}}
      <div style="background: #f8f9fa; padding: 25px; text-align: center; margin: 25px 0; border-radius: 10px; border: 3px solid #007bff;">
        <div style="font-size: 36px; font-weight: bold; color: #007bff; letter-spacing: 5px;">{{.Code}}</div>
      </div>
      <ul>
        <li>This code will expire in <strong>{{.ExpiresIn}}</strong></li>
        <li>Never share this code with anyone</li>
        <li>If you didn't request this, please ignore this email</li>
      </ul>
      {{if .Resend}}<p style="color: #dc3545;"><strong>Note:</strong> Any previous OTP codes are now invalid.</p>{{end}}
    </div>
    <div style="text-align: center; color: #6c757d; font-size: 14px; padding: 20px;">
      <p>This is an automated message from {{.AppName}}. Please do not reply.</p>
      <p>{{.SentAt}}</p>
    </div>
  </div>
</body>
</html>
`

const textCode = `Hello {{.Name}},

{{if .Resend}}Here is your new verification code: {{.Code}}

Any previous OTP codes are now invalid.{{else}}Your OTP code for {{.Purpose}} is: {{.Code}}{{end}}

This code will expire in {{.ExpiresIn}}.

If you didn't request this, please ignore this email.

{{.AppName}}
{{.SentAt}}
`

var (
	htmlCodeTemplate = htmltemplate.Must(htmltemplate.New("code_html").Parse(htmlCode))
	textCodeTemplate = texttemplate.Must(texttemplate.New("code_text").Parse(textCode))
)

type codeTemplateData struct {
	AppName   string
	Name      string
	Purpose   string
	Code      string
	ExpiresIn string
	SentAt    string
	Resend    bool
}
