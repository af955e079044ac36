package password

import "errors"

var (
	// ErrUnknownScheme is returned for a scheme tag outside the registry.
	ErrUnknownScheme = errors.New("unknown password scheme")
	// ErrMalformedReference is returned when a stored reference is not #<scheme>#<native>.
	ErrMalformedReference = errors.New("malformed password reference")
	// ErrCredentialMismatch covers every verification failure, parse errors of the native part included.
	ErrCredentialMismatch = errors.New("credential does not match reference")
	// ErrHashFailed is returned when the hashing backend cannot produce a hash.
	ErrHashFailed = errors.New("password hashing failed")
	// ErrSchedulingUnavailable is returned when the worker pool refuses the job.
	ErrSchedulingUnavailable = errors.New("password worker pool unavailable")
	// ErrInvalidConfig is returned by constructors for unusable parameters.
	ErrInvalidConfig = errors.New("invalid password configuration")
)
