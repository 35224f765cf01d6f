package core

import "errors"

var (
	// ErrStoreUnavailable wraps persistence failures. It is retryable and is
	// never downgraded to a model-generated guess.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrSubjectUnresolved means a pronoun was used with no prior subject and
	// no default patient to fall back on.
	ErrSubjectUnresolved = errors.New("subject unresolved")

	// ErrGenerationFailed wraps model invocation failures.
	ErrGenerationFailed = errors.New("generation failed")

	ErrSessionNotFound = errors.New("session not found")
	ErrPatientNotFound = errors.New("patient not found")
)
