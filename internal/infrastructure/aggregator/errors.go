package aggregator

import (
	"errors"
	"fmt"
)

// Error kinds for the three-step consent protocol. Wrapped by ProviderError
// so callers can match with errors.Is while still reading the upstream
// status and provider out of the structured error.
var (
	ErrConsentCreation = errors.New("consent creation failed")
	ErrStatusCheck     = errors.New("consent status check failed")
	ErrSessionCreation = errors.New("data session creation failed")
	ErrDataFetch       = errors.New("data fetch failed")
)

// ProviderError carries structured context about a failed provider call.
// Cancellation is not translated: context.Canceled and DeadlineExceeded from
// the HTTP client propagate unwrapped inside Err.
type ProviderError struct {
	Kind       error  // one of the sentinel kinds above
	Provider   string // provider id, e.g. "setu"
	ConsentID  string // empty for createConsent failures
	StatusCode int    // upstream HTTP status, 0 on transport errors
	Message    string // upstream error message if one was decoded
	Err        error  // underlying cause, may be nil
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: provider %s", e.Kind, e.Provider)
	if e.ConsentID != "" {
		msg += " consent " + e.ConsentID
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
