// Package notify sends the transactional mails of the recruitment flow. Sends
// never fail the caller: every attempt yields a Delivery that records whether
// the mail went out.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Status string

const (
	StatusSent           Status = "sent"
	StatusDeliveryFailed Status = "delivery_failed"
)

// Delivery is the outcome of one send attempt.
type Delivery struct {
	Status  Status    `json:"status"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
	Err     error     `json:"-"`
}

func (d Delivery) OK() bool { return d.Status == StatusSent }

// ErrorText returns the failure message or an empty string.
func (d Delivery) ErrorText() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Transport hands a rendered message to a mail provider.
type Transport interface {
	Deliver(ctx context.Context, msg *Message) error
}

type Mailer struct {
	transport Transport
	sender    string
	company   string
	logger    *zap.Logger
	now       func() time.Time
}

func NewMailer(transport Transport, sender, company string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		transport: transport,
		sender:    strings.TrimSpace(sender),
		company:   strings.TrimSpace(company),
		logger:    logger,
		now:       time.Now,
	}
}

// Send delivers one plain-text mail on a best-effort basis.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) Delivery {
	d := Delivery{To: strings.TrimSpace(to), Subject: subject, At: m.now()}

	if m.transport == nil {
		return m.failed(d, errors.New("mail transport is not configured"))
	}
	if d.To == "" {
		return m.failed(d, errors.New("recipient is empty"))
	}

	msg := &Message{From: m.sender, To: d.To, Subject: subject, Body: body, Date: d.At}
	if err := m.transport.Deliver(ctx, msg); err != nil {
		return m.failed(d, err)
	}

	d.Status = StatusSent
	m.logger.Info("mail sent", zap.String("to", d.To), zap.String("subject", subject))
	return d
}

func (m *Mailer) SendConfirmation(ctx context.Context, c Candidate) Delivery {
	subject := confirmationSubject(c, m.company)
	body, err := render("confirmation.tmpl", confirmationData{RoleTitle: c.RoleTitle, Company: m.company})
	if err != nil {
		return m.failed(Delivery{To: c.Email, Subject: subject, At: m.now()}, err)
	}
	return m.Send(ctx, c.Email, subject, body)
}

func (m *Mailer) SendInterview(ctx context.Context, c Candidate, i Interview) Delivery {
	subject := interviewSubject(c, m.company)
	body, err := render("interview.tmpl", newInterviewData(c, m.company, i))
	if err != nil {
		return m.failed(Delivery{To: c.Email, Subject: subject, At: m.now()}, err)
	}
	return m.Send(ctx, c.Email, subject, body)
}

func (m *Mailer) SendRejection(ctx context.Context, c Candidate, feedback string) Delivery {
	subject := rejectionSubject(c, m.company)
	body, err := render("rejection.tmpl", rejectionData{RoleTitle: c.RoleTitle, Company: m.company, Feedback: feedback})
	if err != nil {
		return m.failed(Delivery{To: c.Email, Subject: subject, At: m.now()}, err)
	}
	return m.Send(ctx, c.Email, subject, body)
}

func (m *Mailer) failed(d Delivery, err error) Delivery {
	d.Status = StatusDeliveryFailed
	d.Err = err
	m.logger.Warn("mail delivery failed",
		zap.String("to", d.To),
		zap.String("subject", d.Subject),
		zap.Error(err),
	)
	return d
}
