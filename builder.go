package authcore

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/saltstore"
	"github.com/MrEthical07/authcore/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	logger *slog.Logger
	now    func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. Secrets are copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis enables the salt store returned by Engine.Salts.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger overrides the logger built from Config.Log.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for token issuance and validation.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the hash and validate latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, copies every secret and starts the
// hashing worker pool.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	duration, err := token.DurationFromSeconds(cfg.TokenDurationSec)
	if err != nil {
		return nil, err
	}

	// -------- CREDENTIAL HASHER --------
	hasher, err := password.NewHasher(password.Config{
		DefaultScheme: password.SchemeTag(cfg.DefaultScheme),
		Pepper:        cfg.HashPepper,
		Argon2:        cfg.argon2Params(),
		Workers:       cfg.Workers.Size,
		QueueSize:     cfg.Workers.Queue,
	})
	if err != nil {
		return nil, err
	}

	// -------- TOKEN SIGNER --------
	signer, err := token.NewSigner(token.Config{
		Key:      cfg.TokenKey,
		Duration: duration,
		Now:      b.now,
	})
	if err != nil {
		hasher.Close()
		return nil, err
	}

	// -------- STANDARD TOKENS --------
	jwtTTL := cfg.JWT.TTL
	if jwtTTL == 0 {
		jwtTTL = duration
	}
	jwtManager, err := jwt.NewManager(jwt.Config{
		TTL:    jwtTTL,
		Leeway: cfg.JWT.Leeway,
		Issuer: cfg.JWT.Issuer,
		Now:    b.now,
	})
	if err != nil {
		hasher.Close()
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = logging.New(cfg.Log)
	}

	var salts *saltstore.Store
	if b.redis != nil {
		salts = saltstore.New(b.redis, cfg.Redis.Prefix)
	}

	// Secrets now live only inside the components.
	cfg.HashPepper = nil
	cfg.TokenKey = nil

	b.built = true

	return &Engine{
		config:  cfg,
		hasher:  hasher,
		signer:  signer,
		jwt:     jwtManager,
		salts:   salts,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}, nil
}
