package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTransport       = errors.New("source unavailable")
	ErrAutomation      = errors.New("login or extraction failed")
	ErrNoResult        = errors.New("no result")
)

// TransportError is a failed required fetch: network error, timeout or a
// non-2xx response.
type TransportError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s", e.Source)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// AutomationError is any failed step of a scripted browser session. It
// carries the step name only; credentials never appear in it.
type AutomationError struct {
	Step string
	Err  error
}

func (e *AutomationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrAutomation, e.Step)
	}
	return fmt.Sprintf("%s (%s): %v", ErrAutomation, e.Step, e.Err)
}

func (e *AutomationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAutomation}
	}
	return []error{ErrAutomation, e.Err}
}

// Invalid builds an ErrInvalidArgument carrying a usage message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
