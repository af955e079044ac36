package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/token"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func TestEngineHashValidate(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()
	content := password.NewContentToHash("correct horse", fixtureSalt(t))

	reference, err := engine.Hash(ctx, content)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(reference, "#02#$argon2id$v=19$m=8192,t=1,p=1$8F6JYdatQIaeeKbeBl5UUw$") {
		t.Fatalf("unexpected reference %q", reference)
	}

	status, err := engine.Validate(ctx, content, reference)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if status != password.SchemeStatusOk {
		t.Fatalf("expected ok status, got %s", status)
	}

	wrong := password.NewContentToHash("wrong horse", fixtureSalt(t))
	_, err = engine.Validate(ctx, wrong, reference)
	if !errors.Is(err, password.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch, got %v", err)
	}
	if Kind(err) != KindCrypto {
		t.Fatalf("expected crypto kind, got %s", Kind(err))
	}
	if !errors.Is(Public(err), ErrAuthenticationFailed) {
		t.Fatalf("expected generic public error, got %v", Public(err))
	}
}

func TestEngineValidateLegacyIsOutdated(t *testing.T) {
	engine := newTestEngine(t, nil)
	content := password.NewContentToHash("legacy secret", fixtureSalt(t))

	legacy, err := password.NewHMACScheme(testPepper)
	if err != nil {
		t.Fatalf("NewHMACScheme failed: %v", err)
	}
	native, err := legacy.Hash(&content)
	if err != nil {
		t.Fatalf("legacy Hash failed: %v", err)
	}
	reference := password.Reference{Scheme: password.SchemeHMAC, Native: native}.String()

	status, err := engine.Validate(context.Background(), content, reference)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if status != password.SchemeStatusOutdated || !password.NeedsRehash(status) {
		t.Fatalf("expected outdated status, got %s", status)
	}
	if got := engine.MetricsSnapshot().Counters[MetricValidateOutdated]; got != 1 {
		t.Fatalf("expected outdated counter 1, got %d", got)
	}
}

func TestEngineValidateReferenceErrors(t *testing.T) {
	engine := newTestEngine(t, nil)
	content := password.NewContentToHash("x", fixtureSalt(t))

	cases := []struct {
		reference string
		target    error
		kind      ErrorKind
	}{
		{"no-hashes-here", password.ErrMalformedReference, KindFormat},
		{"#02", password.ErrMalformedReference, KindFormat},
		{"#99#whatever", password.ErrUnknownScheme, KindConfig},
		{"#02#$argon2id$garbage", password.ErrCredentialMismatch, KindCrypto},
	}
	for _, tc := range cases {
		_, err := engine.Validate(context.Background(), content, tc.reference)
		if !errors.Is(err, tc.target) {
			t.Fatalf("reference %q: expected %v, got %v", tc.reference, tc.target, err)
		}
		if Kind(err) != tc.kind {
			t.Fatalf("reference %q: expected kind %s, got %s", tc.reference, tc.kind, Kind(err))
		}
	}
}

func TestEngineConcurrentValidate(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()
	content := password.NewContentToHash("shared secret", fixtureSalt(t))

	reference, err := engine.Hash(ctx, content)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			status, err := engine.Validate(ctx, content, reference)
			if err != nil {
				return err
			}
			if status != password.SchemeStatusOk {
				return fmt.Errorf("unexpected status %s", status)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent validate failed: %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricValidateOk]; got != 8 {
		t.Fatalf("expected 8 ok validations, got %d", got)
	}
}

func TestEngineHashAfterClose(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Close()

	_, err := engine.Hash(context.Background(), password.NewContentToHash("x", fixtureSalt(t)))
	if !errors.Is(err, password.ErrSchedulingUnavailable) {
		t.Fatalf("expected ErrSchedulingUnavailable, got %v", err)
	}
	if Kind(err) != KindScheduling {
		t.Fatalf("expected scheduling kind, got %s", Kind(err))
	}

	tok, err := engine.IssueToken("user_one", fixtureSalt(t))
	if err != nil {
		t.Fatalf("token operations must survive Close: %v", err)
	}
	if err := engine.ValidateToken(tok, fixtureSalt(t)); err != nil {
		t.Fatalf("ValidateToken after Close failed: %v", err)
	}
}

func TestEngineTokenLifetime(t *testing.T) {
	salt := uuid.New()

	long := newTestEngine(t, func(c *Config) { c.TokenDurationSec = 0.02 })
	tok, err := long.IssueToken("user_one", salt)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := long.ValidateToken(tok, salt); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}

	short := newTestEngine(t, func(c *Config) { c.TokenDurationSec = 0.01 })
	tok, err = short.IssueToken("user_one", salt)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	err = short.ValidateToken(tok, salt)
	if !errors.Is(err, token.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if Kind(err) != KindLifecycle {
		t.Fatalf("expected lifecycle kind, got %s", Kind(err))
	}
	if got := short.MetricsSnapshot().Counters[MetricTokenExpired]; got != 1 {
		t.Fatalf("expected expired counter 1, got %d", got)
	}
}

func TestEngineTamperedExpiredTokenReportsSignature(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine := newTestEngine(t, nil, func(b *Builder) { b.WithClock(clock.Now) })
	salt := fixtureSalt(t)

	tok, err := engine.IssueToken("user_one", salt)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	clock.Advance(time.Hour)

	tampered := *tok
	tampered.Identity = "user_two"
	err = engine.ValidateToken(&tampered, salt)
	if !errors.Is(err, token.ErrSignatureNotMatching) {
		t.Fatalf("expected ErrSignatureNotMatching, got %v", err)
	}
	if Kind(err) != KindCrypto {
		t.Fatalf("expected crypto kind, got %s", Kind(err))
	}

	if _, err := engine.ValidateTokenString(tok.String(), salt); !errors.Is(err, token.ErrExpired) {
		t.Fatalf("expected ErrExpired for untouched token, got %v", err)
	}
	if _, err := engine.ValidateTokenString(tok.String(), uuid.New()); !errors.Is(err, token.ErrSignatureNotMatching) {
		t.Fatalf("expected ErrSignatureNotMatching for other salt, got %v", err)
	}
	if _, err := engine.ValidateTokenString("only.two", salt); !errors.Is(err, token.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestEngineStandardToken(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	engine := newTestEngine(t, func(c *Config) {
		c.TokenDurationSec = 60
		c.JWT.Leeway = 0
	}, func(b *Builder) { b.WithClock(clock.Now) })

	key := []byte(uuid.NewString())
	tokenStr, err := engine.EncodeStandardToken("user_one", key)
	if err != nil {
		t.Fatalf("EncodeStandardToken failed: %v", err)
	}

	kid, err := engine.DecodeIdentityHeader(tokenStr)
	if err != nil || kid != "user_one" {
		t.Fatalf("DecodeIdentityHeader = %q, %v", kid, err)
	}

	sub, err := engine.DecodeSubject(tokenStr, key)
	if err != nil || sub != "user_one" {
		t.Fatalf("DecodeSubject = %q, %v", sub, err)
	}

	_, err = engine.DecodeSubject(tokenStr, []byte("other-key"))
	if !errors.Is(err, jwt.ErrSignatureInvalid) || Kind(err) != KindCrypto {
		t.Fatalf("expected signature error, got %v (%s)", err, Kind(err))
	}

	clock.Advance(2 * time.Minute)
	_, err = engine.DecodeSubject(tokenStr, key)
	if !errors.Is(err, jwt.ErrExpired) || Kind(err) != KindLifecycle {
		t.Fatalf("expected expired error, got %v (%s)", err, Kind(err))
	}

	_, err = engine.DecodeIdentityHeader("not-a-jwt")
	if !errors.Is(err, jwt.ErrMalformed) || Kind(err) != KindFormat {
		t.Fatalf("expected malformed error, got %v (%s)", err, Kind(err))
	}
}

func TestEngineResolveStandardTokenWithSaltStore(t *testing.T) {
	_, client := newTestRedis(t)
	engine := newTestEngine(t, nil, func(b *Builder) { b.WithRedis(client) })
	ctx := context.Background()

	salts := engine.Salts()
	if salts == nil {
		t.Fatal("expected salt store when redis is configured")
	}
	if _, err := salts.Ensure(ctx, "user_one"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	key, err := salts.Key(ctx, "user_one")
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	tokenStr, err := engine.EncodeStandardToken("user_one", key)
	if err != nil {
		t.Fatalf("EncodeStandardToken failed: %v", err)
	}

	sub, err := engine.ResolveStandardToken(ctx, tokenStr, salts.Key)
	if err != nil || sub != "user_one" {
		t.Fatalf("ResolveStandardToken = %q, %v", sub, err)
	}

	if _, err := salts.Rotate(ctx, "user_one"); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if _, err := engine.ResolveStandardToken(ctx, tokenStr, salts.Key); !errors.Is(err, jwt.ErrSignatureInvalid) {
		t.Fatalf("expected rotated key to reject old token, got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := testConfig()
	cfg.HashPepper = nil
	if _, err := New().WithConfig(cfg).Build(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for missing pepper, got %v", err)
	}

	cfg = testConfig()
	cfg.DefaultScheme = "01"
	if _, err := New().WithConfig(cfg).Build(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for deprecated default, got %v", err)
	}

	b := New().WithConfig(testConfig())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error when reusing builder")
	}
}

func TestBuildCopiesSecrets(t *testing.T) {
	cfg := testConfig()
	key := cfg.TokenKey
	engine := newTestEngine(t, func(c *Config) { *c = cfg })

	salt := fixtureSalt(t)
	tok, err := engine.IssueToken("user_one", salt)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	for i := range key {
		key[i] = 0
	}
	if err := engine.ValidateToken(tok, salt); err != nil {
		t.Fatalf("mutating the caller's key must not affect the engine: %v", err)
	}
	if len(engine.Config().TokenKey) != 0 || len(engine.Config().HashPepper) != 0 {
		t.Fatal("engine config must not retain secrets")
	}
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.Hash(context.Background(), password.ContentToHash{}); !errors.Is(err, ErrEngineNotInitialized) {
		t.Fatalf("expected ErrEngineNotInitialized, got %v", err)
	}
	if _, err := engine.DecodeSubject("x", nil); !errors.Is(err, ErrEngineNotInitialized) {
		t.Fatalf("expected ErrEngineNotInitialized, got %v", err)
	}
	engine.Close()
}
