package notify

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"
)

// serveSMTP answers a single SMTP session and reports the received DATA.
func serveSMTP(t *testing.T, authReply string) (net.Listener, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		var data string
		defer func() { out <- data }()

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 AUTH PLAIN")
			case strings.HasPrefix(cmd, "AUTH"):
				_ = tp.PrintfLine("%s", authReply)
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				_ = tp.PrintfLine("250 OK")
			case cmd == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				data = strings.Join(lines, "\n")
				_ = tp.PrintfLine("250 queued")
			case cmd == "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unsupported")
			}
		}
	}()

	return ln, out
}

func newLocalSMTP(ln net.Listener) *SMTP {
	port := ln.Addr().(*net.TCPAddr).Port
	s := NewSMTP("localhost", port, "hr@example.com", "secret", 5*time.Second)
	s.dial = func(ctx context.Context, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", ln.Addr().String())
	}
	return s
}

func TestSMTPDeliver(t *testing.T) {
	t.Parallel()

	ln, out := serveSMTP(t, "235 authenticated")
	s := newLocalSMTP(ln)
	if s.ImplicitTLS {
		t.Fatalf("non-465 port must not use implicit TLS")
	}

	msg := &Message{From: "hr@example.com", To: "jane@example.com", Subject: "Hello", Body: "Welcome aboard", Date: fixedNow()}
	if err := s.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	data := <-out
	if !strings.Contains(data, "Subject: Hello") || !strings.Contains(data, "Welcome aboard") {
		t.Fatalf("unexpected data:\n%s", data)
	}
}

func TestSMTPDeliverAuthFailure(t *testing.T) {
	t.Parallel()

	ln, out := serveSMTP(t, "535 invalid credentials")
	s := newLocalSMTP(ln)

	msg := &Message{From: "hr@example.com", To: "jane@example.com", Subject: "Hello", Body: "x", Date: fixedNow()}
	err := s.Deliver(context.Background(), msg)
	if err == nil || !strings.Contains(err.Error(), "smtp: auth") {
		t.Fatalf("expected auth error, got %v", err)
	}
	if data := <-out; data != "" {
		t.Fatalf("no data expected after auth failure, got %q", data)
	}
}

func TestNewSMTPImplicitTLSOnPort465(t *testing.T) {
	t.Parallel()

	s := NewSMTP("smtp.gmail.com", 465, "u", "p", 0)
	if !s.ImplicitTLS {
		t.Fatalf("expected implicit TLS on port 465")
	}
	if s.Timeout != defaultSMTPTimeout {
		t.Fatalf("expected default timeout, got %s", s.Timeout)
	}
}
