package password

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authcore/internal/workpool"
)

// Config configures a Hasher.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	DefaultScheme SchemeTag
	Pepper        []byte
	Argon2        Argon2Params
	Workers       int
	QueueSize     int
}

// Hasher is the public entry point for credential hashing. Hashing and
// validation run on a dedicated bounded worker pool.
//
// A Hasher is safe for concurrent use.
type Hasher struct {
	defaultScheme SchemeTag
	registry      *Registry
	pool          *workpool.Pool
}

// NewHasher validates cfg, builds the registry and starts the worker pool.
// The deprecated legacy scheme is rejected as a default.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.DefaultScheme == "" {
		cfg.DefaultScheme = DefaultScheme
	}
	tag, err := ParseSchemeTag(string(cfg.DefaultScheme))
	if err != nil {
		return nil, err
	}
	if tag.Deprecated() {
		return nil, fmt.Errorf("%w: scheme %s is deprecated and cannot be the default", ErrInvalidConfig, tag)
	}
	if cfg.Argon2 == (Argon2Params{}) {
		cfg.Argon2 = DefaultArgon2Params()
	}

	registry, err := NewRegistry(SchemeConfig{Pepper: cfg.Pepper, Argon2: cfg.Argon2})
	if err != nil {
		return nil, err
	}

	return &Hasher{
		defaultScheme: tag,
		registry:      registry,
		pool:          workpool.New(workpool.Config{Workers: cfg.Workers, QueueSize: cfg.QueueSize}),
	}, nil
}

// DefaultScheme returns the tag new references are produced with.
func (h *Hasher) DefaultScheme() SchemeTag {
	return h.defaultScheme
}

// Hash hashes content with the default scheme and returns "#<tag>#<native>".
func (h *Hasher) Hash(ctx context.Context, content ContentToHash) (string, error) {
	return h.HashWithScheme(ctx, h.defaultScheme, content)
}

// HashWithScheme hashes content with an explicit scheme. It exists for
// migrations and tooling; regular callers use Hash.
func (h *Hasher) HashWithScheme(ctx context.Context, tag SchemeTag, content ContentToHash) (string, error) {
	scheme, err := h.registry.Get(tag)
	if err != nil {
		return "", err
	}

	v, err := h.run(ctx, func() (any, error) {
		native, err := scheme.Hash(&content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHashFailed, err)
		}
		return Reference{Scheme: tag, Native: native}.String(), nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// Validate checks content against reference. The returned status is only
// meaningful when err is nil.
func (h *Hasher) Validate(ctx context.Context, content ContentToHash, reference string) (SchemeStatus, error) {
	ref, err := ParseReference(reference)
	if err != nil {
		return SchemeStatusOutdated, err
	}

	status := SchemeStatusOutdated
	if ref.Scheme == h.defaultScheme {
		status = SchemeStatusOk
	}

	scheme, err := h.registry.Get(ref.Scheme)
	if err != nil {
		return status, err
	}

	if _, err := h.run(ctx, func() (any, error) {
		return nil, scheme.Validate(&content, ref.Native)
	}); err != nil {
		return status, err
	}

	return status, nil
}

func (h *Hasher) run(ctx context.Context, job workpool.Job) (any, error) {
	fut, err := h.pool.Submit(job)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchedulingUnavailable, err)
	}
	return fut.Wait(ctx)
}

// Rejected reports submissions refused because the pool was saturated.
func (h *Hasher) Rejected() uint64 {
	return h.pool.Rejected()
}

// Close stops the worker pool after queued jobs finish.
func (h *Hasher) Close() {
	h.pool.Close()
}
