package entities

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument marks a persisted document that could not be decoded.
var ErrMalformedDocument = errors.New("malformed document")

// PersistenceError reports a store file that could not be read, decoded or
// written. At startup it is fatal.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FallbackServiceError reports a network or service failure of the fallback
// query collaborator.
type FallbackServiceError struct {
	Provider string
	Err      error
}

func (e *FallbackServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *FallbackServiceError) Unwrap() error { return e.Err }

// RecognitionError reports a failed transcription. Callers treat it as empty
// input.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
