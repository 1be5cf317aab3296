package tts

import (
	"errors"
	"fmt"
)

// Common errors for the read-aloud core.
var (
	// ErrUnsupported is returned by engine constructors when the platform
	// has no usable speech capability.
	ErrUnsupported = errors.New("text-to-speech is not supported on this platform")

	// ErrEngineBusy is returned when an engine is asked to hold more than one
	// utterance.
	ErrEngineBusy = errors.New("speech engine is busy")

	// ErrNoSentences is reported when a player is initialised without text.
	ErrNoSentences = errors.New("no sentences found in content")

	// ErrInvalidRate is returned for a speech rate outside the allowed steps.
	ErrInvalidRate = errors.New("invalid speech rate")
)

// EngineError describes an utterance that failed inside the engine.
type EngineError struct {
	Utterance uint64 // ID of the failed utterance
	Reason    string // Engine reported reason, e.g. "canceled"
	Err       error  // Underlying error, if any
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech engine error (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("speech engine error (%s)", e.Reason)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsBenign reports whether the error only signals a deliberate cancellation.
func (e *EngineError) IsBenign() bool {
	return IsBenignReason(e.Reason)
}

// IsBenignReason reports whether an engine error reason means the utterance
// was superseded on purpose rather than failing.
func IsBenignReason(reason string) bool {
	return reason == ReasonCanceled || reason == ReasonInterrupted
}

// IsBenign reports whether err is an engine cancellation.
func IsBenign(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.IsBenign()
	}
	return false
}
