package authcore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/password"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "AUTHCORE_"

// Config defines the process-wide settings of an Engine.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable. Builder.Build copies every secret it holds.
type Config struct {
	DefaultScheme    string         `yaml:"default_scheme" env:"DEFAULT_SCHEME"`
	HashPepper       Secret         `yaml:"hash_pepper" env:"HASH_PEPPER"`
	Argon2           Argon2Config   `yaml:"argon2" envPrefix:"ARGON2_"`
	TokenKey         Secret         `yaml:"token_key" env:"TOKEN_KEY"`
	TokenDurationSec float64        `yaml:"token_duration_sec" env:"TOKEN_DURATION_SEC"`
	JWT              JWTConfig      `yaml:"jwt" envPrefix:"JWT_"`
	Workers          WorkersConfig  `yaml:"workers" envPrefix:"WORKERS_"`
	Log              logging.Config `yaml:"log" envPrefix:"LOG_"`
	Metrics          MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Redis            RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
}

/*
====================================
SECTIONS
====================================
*/

// Argon2Config holds the cost parameters of the default hashing scheme.
type Argon2Config struct {
	Memory      uint32 `yaml:"memory" env:"MEMORY"` // in KiB
	Time        uint32 `yaml:"time" env:"TIME"`
	Parallelism uint8  `yaml:"parallelism" env:"PARALLELISM"`
	KeyLength   uint32 `yaml:"key_length" env:"KEY_LENGTH"`
}

// JWTConfig configures standard tokens. A zero TTL reuses the custom token
// duration.
type JWTConfig struct {
	TTL    time.Duration `yaml:"ttl" env:"TTL"`
	Leeway time.Duration `yaml:"leeway" env:"LEEWAY"`
	Issuer string        `yaml:"issuer" env:"ISSUER"`
}

// WorkersConfig sizes the hashing worker pool.
type WorkersConfig struct {
	Size  int `yaml:"size" env:"SIZE"`
	Queue int `yaml:"queue" env:"QUEUE"`
}

// MetricsConfig toggles the in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled" env:"ENABLED"`
	EnableLatencyHistograms bool `yaml:"latency_histograms" env:"LATENCY_HISTOGRAMS"`
}

// RedisConfig points the salt store at a Redis server. It is only read by
// callers that build a saltstore from configuration.
type RedisConfig struct {
	Addr   string `yaml:"addr" env:"ADDR"`
	Prefix string `yaml:"prefix" env:"PREFIX"`
}

/*
====================================
SECRETS
====================================
*/

const redactedSecret = "[REDACTED]"

// Secret is key material supplied as standard base64 in YAML and the
// environment. It never prints its value.
type Secret []byte

// UnmarshalText decodes standard base64, padded or not.
func (s *Secret) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*s = nil
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return errors.New("secret is not valid base64")
	}
	*s = decoded
	return nil
}

// UnmarshalYAML decodes a scalar node as base64.
func (s *Secret) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New("secret must be a base64 string")
	}
	return s.UnmarshalText([]byte(node.Value))
}

func (s Secret) String() string { return redactedSecret }

func (s Secret) GoString() string { return redactedSecret }

// Format keeps fmt verbs such as %x and %v from leaking the bytes.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redactedSecret))
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redactedSecret)
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the built-in defaults. Secrets are left empty and
// must be supplied.
func DefaultConfig() Config {
	params := password.DefaultArgon2Params()
	return Config{
		DefaultScheme: string(password.DefaultScheme),
		Argon2: Argon2Config{
			Memory:      params.Memory,
			Time:        params.Time,
			Parallelism: params.Parallelism,
			KeyLength:   params.KeyLength,
		},
		TokenDurationSec: 1800,
		JWT: JWTConfig{
			Leeway: 30 * time.Second,
		},
		Workers: WorkersConfig{
			Size:  0,
			Queue: 64,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "ats",
		},
	}
}

// LoadConfig starts from DefaultConfig, overlays the YAML file at path when
// path is not empty, then overlays AUTHCORE_* environment variables and
// validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.HashPepper = cloneBytes(cfg.HashPepper)
	out.TokenKey = cloneBytes(cfg.TokenKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c *Config) argon2Params() password.Argon2Params {
	return password.Argon2Params{
		Memory:      c.Argon2.Memory,
		Time:        c.Argon2.Time,
		Parallelism: c.Argon2.Parallelism,
		KeyLength:   c.Argon2.KeyLength,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks every setting and returns an error wrapping ErrConfig on
// the first invalid one.
func (c *Config) Validate() error {
	if _, err := password.ParseSchemeTag(c.DefaultScheme); err != nil {
		return fmt.Errorf("%w: default scheme %q is not registered", ErrConfig, c.DefaultScheme)
	}
	if password.SchemeTag(c.DefaultScheme).Deprecated() {
		return fmt.Errorf("%w: default scheme %q is deprecated", ErrConfig, c.DefaultScheme)
	}
	if len(c.HashPepper) < 16 {
		return fmt.Errorf("%w: hash pepper must be at least 16 bytes", ErrConfig)
	}
	if len(c.TokenKey) == 0 {
		return fmt.Errorf("%w: token key is required", ErrConfig)
	}

	if math.IsNaN(c.TokenDurationSec) || math.IsInf(c.TokenDurationSec, 0) || c.TokenDurationSec <= 0 {
		return fmt.Errorf("%w: token duration must be a positive number of seconds", ErrConfig)
	}
	if c.TokenDurationSec*float64(time.Second) >= math.MaxInt64 {
		return fmt.Errorf("%w: token duration is too large", ErrConfig)
	}

	if c.JWT.TTL < 0 {
		return fmt.Errorf("%w: JWT TTL must be >= 0", ErrConfig)
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return fmt.Errorf("%w: JWT leeway must be between 0 and 2m", ErrConfig)
	}

	if c.Workers.Size < 0 {
		return fmt.Errorf("%w: worker pool size must be >= 0", ErrConfig)
	}
	if c.Workers.Queue <= 0 {
		return fmt.Errorf("%w: worker queue must be > 0", ErrConfig)
	}

	if c.Argon2 != (Argon2Config{}) {
		if _, err := password.NewArgon2Scheme(c.HashPepper, c.argon2Params()); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unsupported log format %q", ErrConfig, c.Log.Format)
	}

	return nil
}
