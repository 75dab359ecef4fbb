package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNotes means synthesis found an empty note collection for the topic.
	ErrNoNotes = errors.New("no research notes found")
	// ErrCompletionFailed means the completion service returned an error or an empty answer.
	ErrCompletionFailed = errors.New("completion failed")
	// ErrStoreFailed means the document store could not be read or written.
	ErrStoreFailed = errors.New("document store failed")
	// ErrInvalidDecomposition means the decomposition response broke the schema.
	ErrInvalidDecomposition = errors.New("invalid decomposition")
)

// DecomposeError aborts a request. Raw holds the completion text, if any, for diagnosis.
type DecomposeError struct {
	Raw string
	Err error
}

func (e *DecomposeError) Error() string {
	return fmt.Sprintf("decompose request: %v", e.Err)
}

func (e *DecomposeError) Unwrap() error {
	return e.Err
}

// SynthesizeError aborts report generation. Kind is one of ErrNoNotes, ErrCompletionFailed
// or ErrStoreFailed; Cause is the underlying error when there is one.
type SynthesizeError struct {
	Topic string
	Kind  error
	Cause error
}

func (e *SynthesizeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("synthesize report for %q: %v: %v", e.Topic, e.Kind, e.Cause)
	}
	return fmt.Sprintf("synthesize report for %q: %v", e.Topic, e.Kind)
}

func (e *SynthesizeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
