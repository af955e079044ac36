package jwt

import (
	"errors"
	"fmt"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoKeyIdentifier is returned when the header carries no kid.
	ErrNoKeyIdentifier = errors.New("jwt: no key identifier")
	// ErrMalformed is returned for tokens that cannot be decoded.
	ErrMalformed = errors.New("jwt: malformed token")
	// ErrSignatureInvalid is returned when the signature does not verify.
	ErrSignatureInvalid = errors.New("jwt: invalid signature")
	// ErrExpired is returned when the exp claim is in the past.
	ErrExpired = errors.New("jwt: token expired")
	// ErrClaimsInvalid covers the remaining claim failures (nbf, iat, iss, missing sub).
	ErrClaimsInvalid = errors.New("jwt: invalid claims")
	// ErrSubjectMismatch is returned by Resolve when sub and kid disagree.
	ErrSubjectMismatch = errors.New("jwt: subject does not match key identifier")
	// ErrKeyLookup wraps failures of the caller-supplied key lookup.
	ErrKeyLookup = errors.New("jwt: key lookup failed")
	// ErrEmptyKey is returned when signing or verifying with an empty key.
	ErrEmptyKey = errors.New("jwt: empty key")
	// ErrInvalidConfig is returned by NewManager for an unusable Config.
	ErrInvalidConfig = errors.New("jwt: invalid configuration")
)

// classify maps golang-jwt errors onto this package's sentinels while keeping
// the original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gjwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, gjwt.ErrTokenSignatureInvalid),
		errors.Is(err, gjwt.ErrSignatureInvalid),
		errors.Is(err, gjwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	case errors.Is(err, gjwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %w", ErrClaimsInvalid, err)
	}
}
