package authcore

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/saltstore"
	"github.com/MrEthical07/authcore/token"
)

var (
	// ErrAuthenticationFailed is the only error shown across the system boundary.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrConfig is wrapped by every configuration error returned from this package.
	ErrConfig = errors.New("invalid authcore configuration")
	// ErrEngineNotInitialized is returned when an Engine method is called on a nil Engine.
	ErrEngineNotInitialized = errors.New("engine not initialized")
)

// ErrorKind is the coarse class of an error returned by an Engine.
type ErrorKind uint8

const (
	// KindUnknown is any error this package does not produce.
	KindUnknown ErrorKind = iota
	// KindFormat covers malformed references, tokens, expiries and headers.
	KindFormat
	// KindCrypto covers backend failures and signature or credential mismatches.
	KindCrypto
	// KindLifecycle covers expired tokens.
	KindLifecycle
	// KindScheduling covers a saturated or closed worker pool and abandoned waits.
	KindScheduling
	// KindConfig covers unknown schemes, invalid durations and bad settings.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindCrypto:
		return "crypto"
	case KindLifecycle:
		return "lifecycle"
	case KindScheduling:
		return "scheduling"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var kindTable = []struct {
	kind ErrorKind
	errs []error
}{
	{KindLifecycle, []error{token.ErrExpired, jwt.ErrExpired}},
	{KindScheduling, []error{
		password.ErrSchedulingUnavailable,
		context.Canceled,
		context.DeadlineExceeded,
	}},
	{KindConfig, []error{
		password.ErrUnknownScheme,
		password.ErrInvalidConfig,
		token.ErrInvalidDuration,
		jwt.ErrInvalidConfig,
		ErrConfig,
		ErrEngineNotInitialized,
	}},
	{KindFormat, []error{
		password.ErrMalformedReference,
		token.ErrInvalidFormat,
		token.ErrCannotDecodeIdent,
		token.ErrCannotDecodeExp,
		token.ErrExpNotISO,
		jwt.ErrNoKeyIdentifier,
		jwt.ErrMalformed,
		jwt.ErrClaimsInvalid,
		jwt.ErrSubjectMismatch,
		saltstore.ErrIdentity,
		saltstore.ErrCorrupt,
	}},
	{KindCrypto, []error{
		password.ErrCredentialMismatch,
		password.ErrHashFailed,
		token.ErrHMACNewFromKey,
		token.ErrSignatureNotMatching,
		jwt.ErrSignatureInvalid,
		jwt.ErrEmptyKey,
		jwt.ErrKeyLookup,
	}},
}

// Kind classifies err. Lifecycle is checked first so an expired standard
// token never reports as a claims problem.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, row := range kindTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.kind
			}
		}
	}
	return KindUnknown
}

// Public collapses err into ErrAuthenticationFailed for end users. nil stays nil.
func Public(err error) error {
	if err == nil {
		return nil
	}
	return ErrAuthenticationFailed
}
