package email

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	done chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 10)}
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

type fakePublisher struct {
	queue string
	body  []byte
	err   error
}

func (p *fakePublisher) PublishJSON(_ context.Context, queue string, v any) error {
	if p.err != nil {
		return p.err
	}
	p.queue = queue
	p.body, _ = json.Marshal(v)
	return nil
}

type fakeInvoker struct {
	name    string
	request any
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, request any, _ any) error {
	f.name = name
	f.request = request
	return nil
}

func TestDispatcher_QueuesWhenPublisherAvailable(t *testing.T) {
	sender := newRecordingSender()
	pub := &fakePublisher{}
	d := NewDispatcher(sender, pub, DispatcherConfig{Queue: "email.dispatch", APIURL: "https://api.example/"}, zerolog.Nop())

	require.NoError(t, d.SendVerificationEmail(context.Background(), "asha@example.com", "Asha", "tok123"))

	assert.Equal(t, "email.dispatch", pub.queue)
	var msg Message
	require.NoError(t, json.Unmarshal(pub.body, &msg))
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Contains(t, msg.HTML, "https://api.example/api/v1/auth/verify-email?token=tok123")
	assert.Contains(t, msg.Text, "tok123")
	assert.Empty(t, sender.sent)
}

func TestDispatcher_FallsBackToDirectSend(t *testing.T) {
	sender := newRecordingSender()
	pub := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(sender, pub, DispatcherConfig{AppURL: "https://app.example"}, zerolog.Nop())

	require.NoError(t, d.SendPasswordResetEmail(context.Background(), "ravi@example.com", "Ravi", "reset-1"))

	select {
	case <-sender.done:
	case <-time.After(time.Second):
		t.Fatal("email was not sent")
	}
	assert.Contains(t, sender.sent[0].HTML, "https://app.example/reset-password?token=reset-1")
}

func TestDispatcher_RejectsMissingRecipient(t *testing.T) {
	d := NewDispatcher(newRecordingSender(), nil, DispatcherConfig{}, zerolog.Nop())
	assert.Error(t, d.Dispatch(context.Background(), Message{Subject: "x"}))
}

func TestReceipt_FormattedAmount(t *testing.T) {
	r := Receipt{Amount: 150005, Currency: "INR"}
	assert.Equal(t, "INR 1500.05", r.FormattedAmount())
}

func TestRender_EscapesHTML(t *testing.T) {
	msg, err := render(welcomeTemplate, "a@b.c", "<script>", "Welcome", map[string]any{
		"Name": "<script>", "Link": "https://app", "Label": "Open",
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(msg.HTML, "<script>"))
	assert.Contains(t, msg.Text, "<script>")
}

func TestJobHandler_DecodesAndSends(t *testing.T) {
	sender := newRecordingSender()
	handle := JobHandler(sender)

	body, _ := json.Marshal(Message{To: "x@y.z", Subject: "Hi"})
	require.NoError(t, handle(context.Background(), body))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Hi", sender.sent[0].Subject)

	assert.Error(t, handle(context.Background(), []byte("not json")))
}

func TestNewSender_ProviderSelection(t *testing.T) {
	logger := zerolog.Nop()

	assert.IsType(t, &LogSender{}, NewSender(Config{Provider: "smtp"}, nil, logger))
	assert.IsType(t, &SMTPSender{}, NewSender(Config{Provider: "smtp", SMTPUsername: "u", SMTPPassword: "p"}, nil, logger))
	assert.IsType(t, &SendgridSender{}, NewSender(Config{Provider: "sendgrid", SendgridKey: "k"}, nil, logger))

	inv := &fakeInvoker{}
	s := NewSender(Config{Provider: "function"}, inv, logger)
	require.IsType(t, &FunctionSender{}, s)
	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.c", Subject: "S"}))
	assert.Equal(t, functions.SendEmail, inv.name)
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	s := NewSMTPSender(Config{FromName: "PARIVARTAN", FromEmail: "no-reply@parivartan.app"}, zerolog.Nop())
	raw := string(s.buildMessage(Message{To: "a@b.c", Subject: "Hello", HTML: "<p>hi</p>", Text: "hi"}))

	assert.Contains(t, raw, "From: PARIVARTAN <no-reply@parivartan.app>\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "<p>hi</p>")
}
