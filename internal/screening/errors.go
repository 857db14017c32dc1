package screening

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks a screening attempt whose model call did not complete.
	ErrTransport = errors.New("screening call failed")
	// ErrFormat marks a screening attempt whose answer could not be parsed.
	ErrFormat = errors.New("screening response has invalid format")
)

// TransportError wraps the failure of the underlying completer.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
	}
	return fmt.Sprintf("%s (model %s): %v", ErrTransport, e.Model, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// FormatError carries the raw model output that violated the response contract.
type FormatError struct {
	Raw      string
	Problems []string
	Err      error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFormat.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}
