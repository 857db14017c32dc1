package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("ai provider returned empty response")

// Completer performs a single system+user prompt exchange with a generative
// text service and returns the raw model output. Implementations must not
// retry and must bound every call with their own timeout.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}
