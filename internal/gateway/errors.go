package gateway

import "fmt"

// unavailableError signals the gateway could not be reached or answered 5xx.
// Callers degrade (simulated metrics, inline error strings) instead of failing hard.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return "gateway unavailable: " + e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates an unreachable/failing gateway.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}

// modelNotAvailableError signals a load request for a model the gateway does
// not have locally (it must be pulled first).
type modelNotAvailableError struct{ name string }

func (e modelNotAvailableError) Error() string {
	return fmt.Sprintf("model %s is not available, pull it first", e.name)
}

// ErrModelNotAvailable constructs a modelNotAvailableError.
func ErrModelNotAvailable(name string) error { return modelNotAvailableError{name: name} }

// IsModelNotAvailable reports whether err indicates a missing gateway model.
func IsModelNotAvailable(err error) bool {
	_, ok := err.(modelNotAvailableError)
	return ok
}

// statusError carries an unexpected gateway HTTP status.
type statusError struct {
	status int
	body   string
}

func (e statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("gateway returned status %d", e.status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.status, e.body)
}

// StatusCode returns the HTTP status the gateway answered with.
func (e statusError) StatusCode() int { return e.status }
