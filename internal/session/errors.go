package session

// noActiveModelError signals a challenge dispatch without a running model.
type noActiveModelError struct{}

func (noActiveModelError) Error() string { return "no model is running" }

// ErrNoActiveModel constructs a noActiveModelError.
func ErrNoActiveModel() error { return noActiveModelError{} }

// IsNoActiveModel reports whether err indicates no running model.
func IsNoActiveModel(err error) bool {
	_, ok := err.(noActiveModelError)
	return ok
}

// unknownChallengeError signals a challenge id outside the fixed catalog.
type unknownChallengeError struct{ id string }

func (e unknownChallengeError) Error() string { return "unknown challenge: " + e.id }

// ErrUnknownChallenge constructs an unknownChallengeError.
func ErrUnknownChallenge(id string) error { return unknownChallengeError{id: id} }

// IsUnknownChallenge reports whether err indicates a bad challenge id.
func IsUnknownChallenge(err error) bool {
	_, ok := err.(unknownChallengeError)
	return ok
}
