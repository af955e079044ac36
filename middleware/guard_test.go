package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/saltstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine *authcore.Engine
	salts  *saltstore.Store
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	now := time.Now()
	f := &fixture{clock: &now}

	cfg := authcore.DefaultConfig()
	cfg.HashPepper = authcore.Secret("middleware-pepper-0123456789")
	cfg.TokenKey = authcore.Secret("middleware-token-key")
	cfg.TokenDurationSec = 60
	cfg.JWT.Leeway = 0
	cfg.Workers = authcore.WorkersConfig{Size: 1, Queue: 4}

	engine, err := authcore.New().
		WithConfig(cfg).
		WithLogger(logging.Discard()).
		WithRedis(client).
		WithClock(func() time.Time { return *f.clock }).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	f.engine = engine
	f.salts = engine.Salts()
	return f
}

func identityHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := authcore.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "missing identity", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id.Method + ":" + id.Subject))
	})
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", strings.TrimSpace(rec.Body.String()))
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestRequireJWT(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.salts.Ensure(ctx, "user_one")
	require.NoError(t, err)
	key, err := f.salts.Key(ctx, "user_one")
	require.NoError(t, err)

	tokenStr, err := f.engine.EncodeStandardToken("user_one", key)
	require.NoError(t, err)

	h := RequireJWT(f.engine, f.salts.Key)(identityHandler())

	rec := serve(h, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jwt:user_one", rec.Body.String())

	assertUnauthorized(t, serve(h, ""))
	assertUnauthorized(t, serve(h, "Basic dXNlcjpwYXNz"))
	assertUnauthorized(t, serve(h, "Bearer "))
	assertUnauthorized(t, serve(h, "Bearer not-a-jwt"))

	other, err := f.engine.EncodeStandardToken("nobody", []byte("unknown-key"))
	require.NoError(t, err)
	assertUnauthorized(t, serve(h, "Bearer "+other))

	*f.clock = f.clock.Add(2 * time.Minute)
	assertUnauthorized(t, serve(h, "Bearer "+tokenStr))
}

func TestRequireToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	salt, err := f.salts.Ensure(ctx, "user_one")
	require.NoError(t, err)

	tok, err := f.engine.IssueToken("user_one", salt)
	require.NoError(t, err)

	h := RequireToken(f.engine, f.salts.Get)(identityHandler())

	rec := serve(h, "Bearer "+tok.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token:user_one", rec.Body.String())

	assertUnauthorized(t, serve(h, "Bearer a.b"))

	forged, err := f.engine.IssueToken("user_one", uuid.New())
	require.NoError(t, err)
	assertUnauthorized(t, serve(h, "Bearer "+forged.String()))

	stranger, err := f.engine.IssueToken("stranger", uuid.New())
	require.NoError(t, err)
	assertUnauthorized(t, serve(h, "Bearer "+stranger.String()))

	_, err = f.salts.Rotate(ctx, "user_one")
	require.NoError(t, err)
	assertUnauthorized(t, serve(h, "Bearer "+tok.String()))
}

func TestRequireTokenExpiredLooksLikeForged(t *testing.T) {
	f := newFixture(t)
	salt := uuid.New()
	lookup := func(context.Context, string) (uuid.UUID, error) { return salt, nil }

	tok, err := f.engine.IssueToken("user_one", salt)
	require.NoError(t, err)
	*f.clock = f.clock.Add(time.Hour)

	h := RequireToken(f.engine, lookup)(identityHandler())
	expired := serve(h, "Bearer "+tok.String())

	tampered := *tok
	tampered.Identity = "user_two"
	forged := serve(h, "Bearer "+tampered.String())

	assertUnauthorized(t, expired)
	assertUnauthorized(t, forged)
	assert.Equal(t, expired.Body.String(), forged.Body.String())
}

func TestGuardsRejectMissingDependencies(t *testing.T) {
	failing := func(context.Context, string) (uuid.UUID, error) { return uuid.Nil, errors.New("boom") }

	assertUnauthorized(t, serve(RequireJWT(nil, nil)(identityHandler()), "Bearer x"))
	assertUnauthorized(t, serve(RequireToken(nil, failing)(identityHandler()), "Bearer x"))
}

func TestBearerToken(t *testing.T) {
	raw, ok := bearerToken("Bearer abc.def")
	require.True(t, ok)
	assert.Equal(t, "abc.def", raw)

	_, ok = bearerToken("bearer abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer    ")
	assert.False(t, ok)
}
