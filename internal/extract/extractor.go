// Package extract turns an uploaded résumé document into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

var pdfMagic = []byte("%PDF-")

// ErrNoText is matched by every extraction failure.
var ErrNoText = errors.New("no text could be extracted from the document")

// Error reports a document that yielded no usable text.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := ErrNoText.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNoText}
	}
	return []error{ErrNoText, e.Err}
}

type document interface {
	NumPage() int
	Text(page int) (string, error)
	Close() error
}

type opener func(data []byte) (document, error)

func openFitz(data []byte) (document, error) {
	return fitz.NewFromMemory(data)
}

// Extractor reads PDF documents page by page and accepts plain UTF-8 text as is.
type Extractor struct {
	open   opener
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{open: openFitz, logger: logger}
}

// Extract returns the text of data. Pages that fail or are empty are skipped;
// the call only fails when nothing could be read at all.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", &Error{Reason: "document is empty"}
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return plainText(data)
	}

	doc, err := e.open(data)
	if err != nil {
		return "", &Error{Reason: "cannot open pdf", Err: err}
	}
	defer doc.Close()

	pages := doc.NumPage()
	var b strings.Builder
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(i)
		if err != nil {
			e.logger.Debug("skipping unreadable page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Debug("skipping page without text", zap.Int("page", i+1))
			continue
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteString("\n")
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &Error{Reason: fmt.Sprintf("none of %d pages contain text", pages)}
	}

	e.logger.Debug("extracted resume text", zap.Int("pages", pages), zap.Int("length", utf8.RuneCountInString(out)))

	return out, nil
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) != -1 {
		return "", &Error{Reason: "unsupported document format"}
	}
	return strings.TrimSpace(string(data)), nil
}
