package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const defaultSMTPTimeout = 30 * time.Second

// SMTP delivers mail through an authenticated SMTP relay. Port 465 uses
// implicit TLS; other ports upgrade with STARTTLS when the server offers it.
type SMTP struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Timeout     time.Duration
	ImplicitTLS bool

	dial func(ctx context.Context, addr string) (net.Conn, error)
}

func NewSMTP(host string, port int, username, password string, timeout time.Duration) *SMTP {
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTP{
		Host:        host,
		Port:        port,
		Username:    username,
		Password:    password,
		Timeout:     timeout,
		ImplicitTLS: port == 465,
	}
}

func (s *SMTP) Deliver(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("smtp: message is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	conn, err := s.connect(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp: connect %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer client.Close()

	if !s.ImplicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
				return fmt.Errorf("smtp: starttls: %w", err)
			}
		}
	}

	if s.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: finish body: %w", err)
	}

	return client.Quit()
}

func (s *SMTP) connect(ctx context.Context, addr string) (net.Conn, error) {
	if s.dial != nil {
		return s.dial(ctx, addr)
	}

	netDialer := &net.Dialer{Timeout: s.Timeout}
	if !s.ImplicitTLS {
		return netDialer.DialContext(ctx, "tcp", addr)
	}

	tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: &tls.Config{ServerName: s.Host}}
	return tlsDialer.DialContext(ctx, "tcp", addr)
}
