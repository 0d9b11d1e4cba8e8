package email

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	texttmpl "text/template"
)

type emailTemplate struct {
	html *htmltmpl.Template
	text *texttmpl.Template
}

func mustTemplate(name, html, text string) emailTemplate {
	return emailTemplate{
		html: htmltmpl.Must(htmltmpl.New(name).Parse(layoutHTML + html)),
		text: texttmpl.Must(texttmpl.New(name).Parse(text)),
	}
}

func render(t emailTemplate, to, toName, subject string, data map[string]any) (Message, error) {
	var html, text bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render email html: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render email text: %w", err)
	}
	return Message{
		To:      to,
		ToName:  toName,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

const layoutHTML = `{{define "button"}}<div style="text-align:center;margin:30px 0;"><a href="{{.Link}}" style="background-color:#e8590c;color:white;padding:12px 24px;text-decoration:none;border-radius:4px;font-weight:bold;">{{.Label}}</a></div>{{end}}`

var verificationTemplate = mustTemplate("verification", `
<html><body><div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2>Welcome to PARIVARTAN!</h2>
<p>Hello {{.Name}},</p>
<p>Please confirm your email address to finish setting up your account.</p>
{{template "button" .}}
<p>Or use this code: <strong>{{.Token}}</strong></p>
<p>The link expires in 24 hours. If you did not sign up, ignore this email.</p>
</div></body></html>`, `Hello {{.Name}},

Confirm your email address by opening this link:
{{.Link}}

The link expires in 24 hours.
`)

var passwordResetTemplate = mustTemplate("password_reset", `
<html><body><div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2>Password reset</h2>
<p>Hello {{.Name}},</p>
<p>Someone asked to reset the password of your PARIVARTAN account.</p>
{{template "button" .}}
<p>The link expires in one hour. If it was not you, you can ignore this email.</p>
</div></body></html>`, `Hello {{.Name}},

Reset your password here:
{{.Link}}

The link expires in one hour.
`)

var welcomeTemplate = mustTemplate("welcome", `
<html><body><div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2>You're in!</h2>
<p>Hello {{.Name}},</p>
<p>Your email is verified. Join the conversation, RSVP to events and support our campaigns.</p>
{{template "button" .}}
</div></body></html>`, `Hello {{.Name}},

Your email is verified. Welcome to PARIVARTAN: {{.Link}}
`)

var receiptTemplate = mustTemplate("receipt", `
<html><body><div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2>Thank you!</h2>
<p>Dear {{.Name}},</p>
<p>We received your donation of <strong>{{.Amount}}</strong> to <em>{{.Campaign}}</em>.</p>
<p>Donation #{{.Donation}} &middot; payment reference {{.Payment}}</p>
</div></body></html>`, `Dear {{.Name}},

We received your donation of {{.Amount}} to {{.Campaign}}.
Donation #{{.Donation}}, payment reference {{.Payment}}.
`)
