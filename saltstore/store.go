package saltstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no salt exists for the identity.
	ErrNotFound = errors.New("token salt not found")
	// ErrUnavailable wraps any Redis failure.
	ErrUnavailable = errors.New("token salt store unavailable")
	// ErrCorrupt is returned when the stored value is not a UUID.
	ErrCorrupt = errors.New("token salt record corrupt")
	// ErrIdentity is returned for an empty or blank identity.
	ErrIdentity = errors.New("invalid identity")
)

// Store reads and writes per-identity token salts.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New returns a Store; an empty prefix defaults to "ats".
func New(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ats"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(identity string) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", ErrIdentity
	}
	return s.prefix + ":" + identity, nil
}

// Get returns the current salt for identity.
func (s *Store) Get(ctx context.Context, identity string) (uuid.UUID, error) {
	key, err := s.key(identity)
	if err != nil {
		return uuid.Nil, err
	}

	raw, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	salt, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrCorrupt
	}
	return salt, nil
}

// Ensure returns the existing salt or atomically creates one.
func (s *Store) Ensure(ctx context.Context, identity string) (uuid.UUID, error) {
	key, err := s.key(identity)
	if err != nil {
		return uuid.Nil, err
	}

	fresh, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	created, err := s.redis.SetNX(ctx, key, fresh.String(), 0).Result()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if created {
		return fresh, nil
	}

	return s.Get(ctx, identity)
}

// Rotate replaces the salt for identity and returns the new one.
func (s *Store) Rotate(ctx context.Context, identity string) (uuid.UUID, error) {
	key, err := s.key(identity)
	if err != nil {
		return uuid.Nil, err
	}

	fresh, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.redis.Set(ctx, key, fresh.String(), 0).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fresh, nil
}

// Delete removes the salt for identity. Missing entries are not an error.
func (s *Store) Delete(ctx context.Context, identity string) error {
	key, err := s.key(identity)
	if err != nil {
		return err
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Key returns the salt in the byte form used as a per-identity JWT key.
func (s *Store) Key(ctx context.Context, identity string) ([]byte, error) {
	salt, err := s.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	return []byte(salt.String()), nil
}
