package gacha

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies why a calculation was rejected or failed.
type ErrorKind string

const (
	KindNoData          ErrorKind = "no-data"
	KindNoTargets       ErrorKind = "no-targets"
	KindZeroMass        ErrorKind = "zero-probability-mass"
	KindUnknownLabel    ErrorKind = "unknown-label"
	KindInvalidTarget   ErrorKind = "invalid-target"
	KindInvalidItem     ErrorKind = "invalid-item"
	KindInvalidSettings ErrorKind = "invalid-settings"
	KindComputation     ErrorKind = "computation-error"
)

var (
	// ErrConfiguration matches every error detected before simulation starts.
	ErrConfiguration = errors.New("invalid calculator configuration")
	// ErrComputation matches unexpected failures during a run.
	ErrComputation = errors.New("probability computation failed")
)

// Error is the engine's error value. Configuration errors are never retried;
// the computation is deterministic, so re-running reproduces them.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets callers test the two broad classes with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind != KindComputation
	case ErrComputation:
		return e.Kind == KindComputation
	}
	return false
}

func configError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorInfo is the validation-error contract handed to presentation layers.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Describe converts any error into an ErrorInfo. Errors that did not come
// from the engine are reported as computation errors.
func Describe(err error) ErrorInfo {
	var ge *Error
	if errors.As(err, &ge) {
		return ErrorInfo{Kind: ge.Kind, Message: ge.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{Kind: KindComputation, Message: "calculation interrupted: " + err.Error()}
	}
	return ErrorInfo{Kind: KindComputation, Message: err.Error()}
}
