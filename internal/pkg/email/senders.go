package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Config selects and configures the email provider
type Config struct {
	Provider     string
	FromName     string
	FromEmail    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	SendgridKey  string
}

// NewSender returns the Sender for the configured provider. Providers without
// credentials degrade to a LogSender.
func NewSender(cfg Config, invoker functions.Invoker, logger zerolog.Logger) Sender {
	switch strings.ToLower(cfg.Provider) {
	case "sendgrid":
		if cfg.SendgridKey != "" {
			return NewSendgridSender(cfg, logger)
		}
	case "function":
		if invoker != nil {
			return NewFunctionSender(invoker)
		}
	default:
		if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
			return NewSMTPSender(cfg, logger)
		}
	}
	logger.Warn().Str("provider", cfg.Provider).Msg("Email credentials not configured - emails will only be logged")
	return NewLogSender(logger)
}

// LogSender logs emails instead of delivering them (development)
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Warn().
		Str("toEmail", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Email not sent - provider not configured")
	return nil
}

// SMTPSender sends email over SMTP
type SMTPSender struct {
	config Config
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTPSender
func NewSMTPSender(cfg Config, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{config: cfg, logger: logger}
}

func (s *SMTPSender) buildMessage(msg Message) []byte {
	const boundary = "parivartan-alt-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// Send delivers msg, using implicit TLS when configured
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	serverAddress := s.config.SMTPHost + ":" + strconv.Itoa(s.config.SMTPPort)
	body := s.buildMessage(msg)

	if !s.config.SMTPUseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{msg.To}, body); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.SMTPHost})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(body); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender sends email through the SendGrid v3 API
type SendgridSender struct {
	key    string
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendgridSender creates a SendgridSender
func NewSendgridSender(cfg Config, logger zerolog.Logger) *SendgridSender {
	return &SendgridSender{
		key:    cfg.SendgridKey,
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

func (s *SendgridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return m
}

// Send posts msg to SendGrid
func (s *SendgridSender) Send(_ context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		s.logger.Error().Err(err).Str("to", msg.To).Msg("SendGrid request failed")
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.logger.Error().Int("status", res.StatusCode).Str("body", res.Body).Msg("SendGrid rejected email")
		return fmt.Errorf("sendgrid rejected email with status %d", res.StatusCode)
	}
	return nil
}

// FunctionSender delegates delivery to the send-email function
type FunctionSender struct {
	invoker functions.Invoker
}

// NewFunctionSender creates a FunctionSender
func NewFunctionSender(invoker functions.Invoker) *FunctionSender {
	return &FunctionSender{invoker: invoker}
}

// Send invokes send-email
func (s *FunctionSender) Send(ctx context.Context, msg Message) error {
	return s.invoker.Invoke(ctx, functions.SendEmail, functions.EmailRequest{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}, nil)
}
