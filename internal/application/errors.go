package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is matched by every TransitionError.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// TransitionError reports a trigger fired from a state that does not accept it.
type TransitionError struct {
	Trigger string
	From    State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s in state %s", ErrInvalidTransition, e.Trigger, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InputError rejects a value supplied by the caller.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }
