package token

import (
	"crypto/hmac"
	"crypto/sha512"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Config configures a Signer.
type Config struct {
	// Key is the process-wide signing key.
	Key []byte
	// Duration is the validity window of issued tokens.
	Duration time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Signer issues and validates tokens. It holds no mutable state and is safe
// for concurrent use.
type Signer struct {
	key      []byte
	duration time.Duration
	now      func() time.Time
}

// NewSigner copies the key and validates the configuration.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Key) == 0 {
		return nil, ErrHMACNewFromKey
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDuration, cfg.Duration)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Signer{
		key:      append([]byte(nil), cfg.Key...),
		duration: cfg.Duration,
		now:      cfg.Now,
	}, nil
}

// DurationFromSeconds converts a fractional-seconds setting into a
// time.Duration, rejecting negative, NaN, infinite and overflowing values.
func DurationFromSeconds(sec float64) (time.Duration, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, sec)
	}
	d := sec * float64(time.Second)
	if d >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, sec)
	}
	return time.Duration(d), nil
}

// Duration returns the validity window.
func (s *Signer) Duration() time.Duration {
	return s.duration
}

// Issue signs a token for identity that expires Duration from now.
func (s *Signer) Issue(identity string, salt uuid.UUID) (*Token, error) {
	return s.IssueFor(identity, salt, s.duration)
}

// IssueFor is Issue with an explicit validity window.
func (s *Signer) IssueFor(identity string, salt uuid.UUID, d time.Duration) (*Token, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDuration, d)
	}

	exp := s.now().UTC().Add(d).Format(time.RFC3339Nano)
	sig, err := s.sign(identity, exp, salt)
	if err != nil {
		return nil, err
	}

	return &Token{
		Identity:  identity,
		Expiry:    exp,
		Signature: sig,
	}, nil
}

// Validate checks the signature first and the expiry only if it matches.
func (s *Signer) Validate(tok *Token, salt uuid.UUID) error {
	if tok == nil {
		return ErrInvalidFormat
	}

	expected, err := s.sign(tok.Identity, tok.Expiry, salt)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(tok.Signature)) {
		return ErrSignatureNotMatching
	}

	exp, err := time.Parse(time.RFC3339, tok.Expiry)
	if err != nil {
		return ErrExpNotISO
	}
	if !exp.After(s.now()) {
		return ErrExpired
	}

	return nil
}

// ValidateString parses s and validates the result.
func (s *Signer) ValidateString(raw string, salt uuid.UUID) (*Token, error) {
	tok, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(tok, salt); err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *Signer) sign(ident, exp string, salt uuid.UUID) (string, error) {
	if len(s.key) == 0 {
		return "", ErrHMACNewFromKey
	}

	mac := hmac.New(sha512.New, s.key)
	_, _ = mac.Write([]byte(signingInput(ident, exp)))
	_, _ = mac.Write(salt[:])

	return b64u.EncodeToString(mac.Sum(nil)), nil
}
