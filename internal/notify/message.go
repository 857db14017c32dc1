package notify

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"time"
)

// Message is a single plain-text mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
}

// Bytes renders the message as RFC 5322 text with CRLF line endings.
func (m *Message) Bytes() []byte {
	var b bytes.Buffer

	header := func(key, value string) {
		fmt.Fprintf(&b, "%s: %s\r\n", key, value)
	}

	header("From", m.From)
	header("To", m.To)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return b.Bytes()
}
