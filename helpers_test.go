package authcore

import (
	"testing"
	"time"

	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	testPepper   = []byte("test-pepper-0123456789abcdef")
	testTokenKey = []byte("token-key-for-tests")
)

const testSalt = "f05e8961-d6ad-4086-9e78-a6de065e5453"

// testConfig uses the cheapest Argon2 parameters the hasher accepts.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HashPepper = append(Secret(nil), testPepper...)
	cfg.TokenKey = append(Secret(nil), testTokenKey...)
	cfg.Argon2 = Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLength: 32}
	cfg.Workers = WorkersConfig{Size: 2, Queue: 16}
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config), opts ...func(*Builder)) *Engine {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	b := New().WithConfig(cfg).WithLogger(logging.Discard())
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func fixtureSalt(t *testing.T) uuid.UUID {
	t.Helper()
	salt, err := uuid.Parse(testSalt)
	if err != nil {
		t.Fatalf("parse salt: %v", err)
	}
	return salt
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
