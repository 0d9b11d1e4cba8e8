package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Message is one outgoing email. It is also the RabbitMQ job payload.
type Message struct {
	To      string `json:"to"`
	ToName  string `json:"toName,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Sender delivers a rendered message through one provider
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// JobPublisher enqueues a JSON job on a named queue
type JobPublisher interface {
	PublishJSON(ctx context.Context, queue string, v any) error
}

// Mailer is what the services use to send templated emails
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, toName, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, token string) error
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendDonationReceipt(ctx context.Context, toEmail string, receipt Receipt) error
}

// Receipt is the data rendered into a donation receipt
type Receipt struct {
	DonorName     string
	CampaignTitle string
	Amount        int64
	Currency      string
	DonationID    int64
	PaymentID     string
}

// FormattedAmount renders minor units as a decimal amount
func (r Receipt) FormattedAmount() string {
	return fmt.Sprintf("%s %d.%02d", r.Currency, r.Amount/100, r.Amount%100)
}

// Dispatcher renders templates and hands messages to the queue or the sender
type Dispatcher struct {
	sender    Sender
	publisher JobPublisher
	queue     string
	appURL    string
	apiURL    string
	logger    zerolog.Logger
}

// DispatcherConfig configures a Dispatcher
type DispatcherConfig struct {
	// Queue is the job queue name; ignored without a publisher
	Queue string
	// AppURL is the web client base URL used in links
	AppURL string
	// APIURL is this service's public base URL
	APIURL string
}

// NewDispatcher creates a Dispatcher. publisher may be nil, in which case
// messages are sent from a goroutine.
func NewDispatcher(sender Sender, publisher JobPublisher, cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		publisher: publisher,
		queue:     cfg.Queue,
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		logger:    logger,
	}
}

// Dispatch queues msg, falling back to an asynchronous direct send
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	if d.publisher != nil {
		err := d.publisher.PublishJSON(ctx, d.queue, msg)
		if err == nil {
			d.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email queued")
			return nil
		}
		d.logger.Warn().Err(err).Str("to", msg.To).Msg("Email queue unavailable, sending directly")
	}

	go func() {
		if err := d.sender.Send(context.Background(), msg); err != nil {
			d.logger.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("Failed to send email")
		}
	}()
	return nil
}

// SendVerificationEmail sends the email address verification link
func (d *Dispatcher) SendVerificationEmail(ctx context.Context, toEmail, toName, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", d.apiURL, token)
	msg, err := render(verificationTemplate, toEmail, toName, "Verify your email address", map[string]any{
		"Name":  toName,
		"Link":  link,
		"Label": "Verify Email",
		"Token": token,
	})
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, msg)
}

// SendPasswordResetEmail sends the password reset link
func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, toEmail, toName, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", d.appURL, token)
	msg, err := render(passwordResetTemplate, toEmail, toName, "Reset your password", map[string]any{
		"Name":  toName,
		"Link":  link,
		"Label": "Choose a new password",
		"Token": token,
	})
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, msg)
}

// SendWelcomeEmail greets a user whose email was just verified
func (d *Dispatcher) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	msg, err := render(welcomeTemplate, toEmail, toName, "Welcome to PARIVARTAN", map[string]any{
		"Name":  toName,
		"Link":  d.appURL,
		"Label": "Open PARIVARTAN",
	})
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, msg)
}

// SendDonationReceipt thanks a donor after a verified payment
func (d *Dispatcher) SendDonationReceipt(ctx context.Context, toEmail string, receipt Receipt) error {
	msg, err := render(receiptTemplate, toEmail, receipt.DonorName, "Thank you for your donation", map[string]any{
		"Name":     receipt.DonorName,
		"Campaign": receipt.CampaignTitle,
		"Amount":   receipt.FormattedAmount(),
		"Donation": receipt.DonationID,
		"Payment":  receipt.PaymentID,
	})
	if err != nil {
		return err
	}
	return d.Dispatch(ctx, msg)
}

// JobHandler decodes a queued Message and sends it
func JobHandler(sender Sender) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("invalid email job: %w", err)
		}
		return sender.Send(ctx, msg)
	}
}
