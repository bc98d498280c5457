package models

import "errors"

// Error kinds shared by every layer. Concrete errors wrap one of these so
// callers can classify a failure with errors.Is.
var (
	ErrInvalidState          = errors.New("invalid state")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrPreconditionViolation = errors.New("precondition violated")
	ErrLookupFailure         = errors.New("lookup failed")
	ErrAmbiguousOutcome      = errors.New("ambiguous outcome")
	ErrConfigurationMissing  = errors.New("configuration missing")
)
