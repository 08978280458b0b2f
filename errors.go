package pageglot

import "fmt"

// CapabilityError indicates a host capability (translation engine or
// language detector) is missing or below the minimum version. It is
// terminal for the operation: the user must upgrade, no retry helps.
type CapabilityError struct {
	Capability string // "translation" or "detection"
	Cause      error
}

func (e *CapabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s capability unavailable: %v", e.Capability, e.Cause)
	}
	return fmt.Sprintf("%s capability unavailable", e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return e.Cause
}

// EngineError indicates a per-call engine failure. Recoverable: callers
// downgrade the affected item and continue.
type EngineError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("engine error: %s", e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// DetectionError indicates a language-identification failure. It is
// always absorbed inside the gateway with a fallback language and never
// reaches callers; the type exists for logging.
type DetectionError struct {
	Cause error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("language detection failed: %v", e.Cause)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}

// MessagingError indicates a context could not be reached (no content
// script in the tab, or it stopped responding). Retryable is true while
// injection plus a bounded poll may still succeed.
type MessagingError struct {
	TabID     int
	Message   string
	Cause     error
	Retryable bool
}

func (e *MessagingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("messaging error (tab %d): %s: %v", e.TabID, e.Message, e.Cause)
	}
	return fmt.Sprintf("messaging error (tab %d): %s", e.TabID, e.Message)
}

func (e *MessagingError) Unwrap() error {
	return e.Cause
}

// InputTooLongError indicates an input exceeded its cap and was
// rejected before any engine call.
type InputTooLongError struct {
	Length int
	Limit  int
}

func (e *InputTooLongError) Error() string {
	return fmt.Sprintf("input too long: %d characters (limit %d)", e.Length, e.Limit)
}
