package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingTransport struct {
	messages []*Message
	err      error
}

func (r *recordingTransport) Deliver(_ context.Context, msg *Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
}

func newTestMailer(transport Transport, logger *zap.Logger) *Mailer {
	m := NewMailer(transport, "hr@example.com", "Acme", logger)
	m.now = fixedNow
	return m
}

func TestSendDelivers(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{}
	d := newTestMailer(transport, nil).Send(context.Background(), " jane@example.com ", "Hello", "Body")

	if !d.OK() || d.Status != StatusSent {
		t.Fatalf("expected sent delivery, got %+v", d)
	}
	if d.To != "jane@example.com" || !d.At.Equal(fixedNow()) {
		t.Fatalf("unexpected delivery fields: %+v", d)
	}
	if len(transport.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(transport.messages))
	}
	msg := transport.messages[0]
	if msg.From != "hr@example.com" || msg.To != "jane@example.com" || msg.Subject != "Hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestSendReportsTransportFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	transport := &recordingTransport{err: errors.New("connection refused")}

	d := newTestMailer(transport, zap.New(core)).Send(context.Background(), "jane@example.com", "Hello", "Body")

	if d.OK() || d.Status != StatusDeliveryFailed {
		t.Fatalf("expected failed delivery, got %+v", d)
	}
	if d.ErrorText() != "connection refused" {
		t.Fatalf("unexpected error text %q", d.ErrorText())
	}
	if logs.FilterMessage("mail delivery failed").Len() != 1 {
		t.Fatalf("expected failure to be logged, got %v", logs.All())
	}
}

func TestSendWithoutTransportOrRecipient(t *testing.T) {
	t.Parallel()

	if d := newTestMailer(nil, nil).Send(context.Background(), "jane@example.com", "s", "b"); d.OK() {
		t.Fatalf("expected failure without transport")
	}

	transport := &recordingTransport{}
	if d := newTestMailer(transport, nil).Send(context.Background(), "  ", "s", "b"); d.OK() {
		t.Fatalf("expected failure without recipient")
	}
	if len(transport.messages) != 0 {
		t.Fatalf("transport must not be called without recipient")
	}
}

func TestSendConfirmation(t *testing.T) {
	t.Parallel()

	transport := &recordingTransport{}
	d := newTestMailer(transport, nil).SendConfirmation(context.Background(), Candidate{Email: "jane@example.com", RoleTitle: "Backend Engineer"})
	if !d.OK() {
		t.Fatalf("unexpected failure: %v", d.Err)
	}

	msg := transport.messages[0]
	if msg.Subject != "Selection Confirmation - Backend Engineer at Acme" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "selected for the Backend Engineer position at Acme") {
		t.Fatalf("unexpected body:\n%s", msg.Body)
	}
}

func TestSendRejectionKeepsFeedbackVerbatim(t *testing.T) {
	t.Parallel()

	feedback := "Missing  Kubernetes experience.\n- Docker: limited"
	transport := &recordingTransport{}
	d := newTestMailer(transport, nil).SendRejection(context.Background(), Candidate{Email: "jane@example.com", RoleTitle: "Frontend Engineer"}, feedback)
	if !d.OK() {
		t.Fatalf("unexpected failure: %v", d.Err)
	}

	msg := transport.messages[0]
	if msg.Subject != "Your Application for Frontend Engineer at Acme" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, feedback) {
		t.Fatalf("feedback not preserved:\n%s", msg.Body)
	}
}

func TestSendInterview(t *testing.T) {
	t.Parallel()

	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	nyc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	transport := &recordingTransport{}
	interview := Interview{
		Start:       time.Date(2026, 10, 20, 19, 0, 0, 0, ist),
		DisplayZone: nyc,
		Duration:    time.Hour,
		Link:        "https://zoom.us/j/123",
	}
	d := newTestMailer(transport, nil).SendInterview(context.Background(), Candidate{Email: "jane@example.com", RoleTitle: "AI ML Engineer"}, interview)
	if !d.OK() {
		t.Fatalf("unexpected failure: %v", d.Err)
	}

	msg := transport.messages[0]
	if msg.Subject != "Interview Scheduled - AI ML Engineer at Acme" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{
		"Date: 2026-10-20",
		"2026-10-20 19:00 IST",
		"2026-10-20 09:30 EDT",
		"Duration: 60 minutes",
		"Attendee: jane@example.com",
		"Zoom Link: https://zoom.us/j/123",
		"IST is UTC+05:30",
		"EDT is UTC-04:00",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestMessageBytes(t *testing.T) {
	t.Parallel()

	msg := &Message{
		From:    "hr@example.com",
		To:      "jane@example.com",
		Subject: "Hello",
		Body:    "line one\nline two",
		Date:    fixedNow(),
	}
	got := string(msg.Bytes())

	for _, want := range []string{
		"From: hr@example.com\r\n",
		"To: jane@example.com\r\n",
		"Subject: Hello\r\n",
		"Content-Type: text/plain; charset=\"utf-8\"\r\n",
		"\r\n\r\nline one\r\nline two",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("message missing %q:\n%s", want, got)
		}
	}
}
