package authcore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/authcore/internal/workpool"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/saltstore"
	"github.com/MrEthical07/authcore/token"
	"github.com/google/uuid"
)

// Engine is the caller-facing boundary of authcore. It is safe for
// concurrent use after Builder.Build.
type Engine struct {
	config  Config
	hasher  *password.Hasher
	signer  *token.Signer
	jwt     *jwt.Manager
	salts   *saltstore.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Close stops the hashing worker pool once queued jobs finish. Token
// operations keep working.
func (e *Engine) Close() {
	if e == nil || e.hasher == nil {
		return
	}
	e.hasher.Close()
}

// Hash returns "#<default tag>#<native>" for content. It waits on the
// worker pool until the result is ready or ctx is done; the computation
// itself is never interrupted.
func (e *Engine) Hash(ctx context.Context, content password.ContentToHash) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotInitialized
	}

	start := time.Now()
	reference, err := e.hasher.Hash(ctx, content)
	e.metrics.Observe(MetricHashLatency, time.Since(start))
	if err != nil {
		e.metrics.Inc(MetricHashFailure)
		e.countRejected(err)
		e.logFailure(ctx, "hash", err)
		return "", err
	}

	e.metrics.Inc(MetricHashSuccess)
	return reference, nil
}

// Validate checks content against reference and reports whether the
// reference uses the default scheme. The status is meaningless when err is
// not nil.
func (e *Engine) Validate(ctx context.Context, content password.ContentToHash, reference string) (password.SchemeStatus, error) {
	if e == nil || e.hasher == nil {
		return password.SchemeStatusOutdated, ErrEngineNotInitialized
	}

	start := time.Now()
	status, err := e.hasher.Validate(ctx, content, reference)
	e.metrics.Observe(MetricValidateLatency, time.Since(start))
	if err != nil {
		e.metrics.Inc(MetricValidateFailure)
		e.countRejected(err)
		e.logFailure(ctx, "validate", err)
		return status, err
	}

	if status == password.SchemeStatusOk {
		e.metrics.Inc(MetricValidateOk)
	} else {
		e.metrics.Inc(MetricValidateOutdated)
	}
	return status, nil
}

// IssueToken signs a custom token for identity under its per-identity salt.
func (e *Engine) IssueToken(identity string, salt uuid.UUID) (*token.Token, error) {
	if e == nil || e.signer == nil {
		return nil, ErrEngineNotInitialized
	}

	tok, err := e.signer.Issue(identity, salt)
	if err != nil {
		e.metrics.Inc(MetricTokenFailure)
		e.logFailure(context.Background(), "issue_token", err)
		return nil, err
	}

	e.metrics.Inc(MetricTokenIssued)
	return tok, nil
}

// ValidateToken checks tok against salt. A bad signature is reported before
// the expiry is ever read.
func (e *Engine) ValidateToken(tok *token.Token, salt uuid.UUID) error {
	if e == nil || e.signer == nil {
		return ErrEngineNotInitialized
	}

	err := e.signer.Validate(tok, salt)
	e.countToken(err)
	return err
}

// ValidateTokenString parses raw and validates it against salt.
func (e *Engine) ValidateTokenString(raw string, salt uuid.UUID) (*token.Token, error) {
	if e == nil || e.signer == nil {
		return nil, ErrEngineNotInitialized
	}

	tok, err := e.signer.ValidateString(raw, salt)
	e.countToken(err)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// EncodeStandardToken signs an HS256 JWT for identity with key and stamps
// kid = identity.
func (e *Engine) EncodeStandardToken(identity string, key []byte) (string, error) {
	if e == nil || e.jwt == nil {
		return "", ErrEngineNotInitialized
	}

	tokenStr, err := e.jwt.Encode(identity, key)
	if err != nil {
		e.metrics.Inc(MetricJWTFailure)
		e.logFailure(context.Background(), "encode_standard_token", err)
		return "", err
	}

	e.metrics.Inc(MetricJWTEncoded)
	return tokenStr, nil
}

// DecodeIdentityHeader returns the kid header without verifying the token.
// Use it only to select the key for DecodeSubject.
func (e *Engine) DecodeIdentityHeader(tokenStr string) (string, error) {
	if e == nil || e.jwt == nil {
		return "", ErrEngineNotInitialized
	}

	kid, err := e.jwt.DecodeKeyID(tokenStr)
	if err != nil {
		e.countJWT(context.Background(), "decode_identity_header", err)
		return "", err
	}
	return kid, nil
}

// DecodeSubject verifies tokenStr with key and returns the subject. Expired,
// badly signed and malformed tokens stay distinguishable through errors.Is.
func (e *Engine) DecodeSubject(tokenStr string, key []byte) (string, error) {
	if e == nil || e.jwt == nil {
		return "", ErrEngineNotInitialized
	}

	sub, err := e.jwt.DecodeSubject(tokenStr, key)
	e.countJWT(context.Background(), "decode_subject", err)
	if err != nil {
		return "", err
	}
	return sub, nil
}

// ResolveStandardToken reads the kid, asks lookup for that identity's key
// and verifies the token with it.
func (e *Engine) ResolveStandardToken(ctx context.Context, tokenStr string, lookup jwt.KeyLookup) (string, error) {
	if e == nil || e.jwt == nil {
		return "", ErrEngineNotInitialized
	}

	sub, err := e.jwt.Resolve(ctx, tokenStr, lookup)
	e.countJWT(ctx, "resolve_standard_token", err)
	if err != nil {
		return "", err
	}
	return sub, nil
}

// Salts returns the Redis salt store, or nil when the Builder had no Redis
// client.
func (e *Engine) Salts() *saltstore.Store {
	if e == nil {
		return nil
	}
	return e.salts
}

// Config returns the configuration the Engine was built with. Secrets are
// not included.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// DefaultScheme returns the tag new references are produced with.
func (e *Engine) DefaultScheme() password.SchemeTag {
	if e == nil || e.hasher == nil {
		return password.DefaultScheme
	}
	return e.hasher.DefaultScheme()
}

// PoolRejected reports hashing jobs refused because the pool was saturated.
func (e *Engine) PoolRejected() uint64 {
	if e == nil || e.hasher == nil {
		return 0
	}
	return e.hasher.Rejected()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return NewMetrics(MetricsConfig{}).Snapshot()
	}
	return e.metrics.Snapshot()
}

// Metrics exposes the live counters for exporters.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

func (e *Engine) countRejected(err error) {
	if errors.Is(err, workpool.ErrSaturated) {
		e.metrics.Inc(MetricPoolRejected)
	}
}

func (e *Engine) countToken(err error) {
	switch {
	case err == nil:
		e.metrics.Inc(MetricTokenValidated)
		return
	case errors.Is(err, token.ErrExpired):
		e.metrics.Inc(MetricTokenExpired)
	case errors.Is(err, token.ErrSignatureNotMatching):
		e.metrics.Inc(MetricTokenSignatureMismatch)
	default:
		e.metrics.Inc(MetricTokenFailure)
	}
	e.logFailure(context.Background(), "validate_token", err)
}

func (e *Engine) countJWT(ctx context.Context, op string, err error) {
	switch {
	case err == nil:
		e.metrics.Inc(MetricJWTDecoded)
		return
	case errors.Is(err, jwt.ErrExpired):
		e.metrics.Inc(MetricJWTExpired)
	default:
		e.metrics.Inc(MetricJWTFailure)
	}
	e.logFailure(ctx, op, err)
}

// logFailure records the operation and the error kind only. The error text
// is left out because wrapped parser errors can quote input.
func (e *Engine) logFailure(ctx context.Context, op string, err error) {
	if e.logger == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "authcore operation failed",
		slog.String("op", op),
		slog.String("kind", Kind(err).String()),
	)
}
