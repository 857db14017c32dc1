package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeDocument struct {
	pages  []string
	errs   map[int]error
	closed bool
}

func (d *fakeDocument) NumPage() int { return len(d.pages) }

func (d *fakeDocument) Text(page int) (string, error) {
	if err := d.errs[page]; err != nil {
		return "", err
	}
	return d.pages[page], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func extractorFor(doc *fakeDocument, openErr error) *Extractor {
	return &Extractor{
		open: func([]byte) (document, error) {
			if openErr != nil {
				return nil, openErr
			}
			return doc, nil
		},
		logger: zap.NewNop(),
	}
}

var fakePDF = []byte("%PDF-1.7 fake")

func TestExtractSkipsEmptyAndBrokenPages(t *testing.T) {
	doc := &fakeDocument{
		pages: []string{"", "Python, REST APIs", "   ", "Docker, AWS"},
		errs:  map[int]error{2: errors.New("broken stream")},
	}

	text, err := extractorFor(doc, nil).Extract(context.Background(), fakePDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Python, REST APIs\nDocker, AWS" {
		t.Fatalf("unexpected text: %q", text)
	}
	if !doc.closed {
		t.Fatal("expected document to be closed")
	}
}

func TestExtractFailsWhenNoPageHasText(t *testing.T) {
	doc := &fakeDocument{pages: []string{"", " \n"}}

	_, err := extractorFor(doc, nil).Extract(context.Background(), fakePDF)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if !strings.Contains(err.Error(), "none of 2 pages") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestExtractOpenFailure(t *testing.T) {
	cause := errors.New("corrupt xref")

	_, err := extractorFor(nil, cause).Extract(context.Background(), fakePDF)
	if !errors.Is(err, ErrNoText) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrNoText wrapping the cause, got %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	text, err := New(nil).Extract(context.Background(), []byte("  Jane Doe\nGo, Kubernetes\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Jane Doe\nGo, Kubernetes" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractRejectsEmptyAndBinary(t *testing.T) {
	extractor := New(nil)

	if _, err := extractor.Extract(context.Background(), []byte(" \n")); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText for empty input, got %v", err)
	}

	if _, err := extractor.Extract(context.Background(), []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff}); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText for binary input, got %v", err)
	}
}
