package token

import "errors"

var (
	// ErrHMACNewFromKey is returned when no MAC can be built from the signing key.
	ErrHMACNewFromKey = errors.New("token: cannot build hmac from key")
	// ErrInvalidFormat is returned when a token does not have exactly three fields.
	ErrInvalidFormat = errors.New("token: invalid format")
	// ErrCannotDecodeIdent is returned when the identity field is not base64url.
	ErrCannotDecodeIdent = errors.New("token: cannot decode identity")
	// ErrCannotDecodeExp is returned when the expiry field is not base64url.
	ErrCannotDecodeExp = errors.New("token: cannot decode expiry")
	// ErrSignatureNotMatching is returned when the recomputed signature differs.
	ErrSignatureNotMatching = errors.New("token: signature not matching")
	// ErrExpNotISO is returned when a correctly signed expiry is not RFC 3339.
	ErrExpNotISO = errors.New("token: expiry is not RFC 3339")
	// ErrExpired is returned when the expiry is not strictly after now.
	ErrExpired = errors.New("token: expired")
	// ErrInvalidDuration is returned for a negative, NaN or overflowing validity duration.
	ErrInvalidDuration = errors.New("token: invalid duration")
)
