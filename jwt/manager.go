package jwt

import (
	"context"
	"fmt"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Config configures a Manager.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	TTL    time.Duration
	Leeway time.Duration
	Issuer string
	Now    func() time.Time
}

// Manager encodes and decodes HS256 tokens. It holds no keys; every call is
// given the per-identity key.
type Manager struct {
	config Config
}

// Claims carries the subject and the registered time claims.
type Claims struct {
	gjwt.RegisteredClaims
}

// KeyLookup returns the verification key for identity.
type KeyLookup func(ctx context.Context, identity string) ([]byte, error)

// NewManager validates cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: TTL must be > 0", ErrInvalidConfig)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, fmt.Errorf("%w: leeway must be between 0 and 2m", ErrInvalidConfig)
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// Encode signs {sub: identity, exp, iat} with key and stamps kid = identity.
func (m *Manager) Encode(identity string, key []byte) (string, error) {
	if len(key) == 0 {
		return "", ErrEmptyKey
	}

	now := m.config.Now()
	claims := Claims{
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: gjwt.NewNumericDate(now.Add(m.config.TTL)),
			IssuedAt:  gjwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	token.Header["kid"] = identity

	return token.SignedString(key)
}

// DecodeKeyID returns the kid header without verifying anything.
func (m *Manager) DecodeKeyID(tokenStr string) (string, error) {
	token, _, err := gjwt.NewParser().ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return "", classify(err)
	}

	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return "", ErrNoKeyIdentifier
	}

	return kid, nil
}

// DecodeSubject verifies tokenStr with key and returns its subject.
func (m *Manager) DecodeSubject(tokenStr string, key []byte) (string, error) {
	claims, err := m.parse(tokenStr, key)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Resolve runs the two-phase protocol: read kid, fetch the key for that
// identity, verify. The verified subject must equal the kid.
func (m *Manager) Resolve(ctx context.Context, tokenStr string, lookup KeyLookup) (string, error) {
	kid, err := m.DecodeKeyID(tokenStr)
	if err != nil {
		return "", err
	}

	key, err := lookup(ctx, kid)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKeyLookup, err)
	}

	sub, err := m.DecodeSubject(tokenStr, key)
	if err != nil {
		return "", err
	}
	if sub != kid {
		return "", ErrSubjectMismatch
	}

	return sub, nil
}

func (m *Manager) parse(tokenStr string, key []byte) (*Claims, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	options := []gjwt.ParserOption{
		gjwt.WithValidMethods([]string{gjwt.SigningMethodHS256.Alg()}),
		gjwt.WithExpirationRequired(),
		gjwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, gjwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, gjwt.WithIssuer(m.config.Issuer))
	}

	parser := gjwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *gjwt.Token) (interface{}, error) {
		if t.Method.Alg() != gjwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrClaimsInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrClaimsInvalid)
	}

	return claims, nil
}
