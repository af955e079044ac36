package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/logging"
	promexport "github.com/MrEthical07/authcore/metrics/export/prometheus"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/saltstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type identityState struct {
	name  string
	salt  uuid.UUID
	token string
	jwt   string
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file; AUTHCORE_* env vars still apply")
		identities  = flag.Int("identities", 10000, "number of identities to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per token phase")
		hashOps     = flag.Int("hash-ops", 200, "hash+validate operations in the hashing phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; overrides redis.addr and disables -embedded-redis")
		embedded    = flag.Bool("embedded-redis", true, "run against an in-process miniredis instead of redis.addr")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	)
	flag.Parse()

	if *identities <= 0 || *concurrency <= 0 || *ops <= 0 || *hashOps <= 0 {
		fmt.Fprintln(os.Stderr, "identities, concurrency, ops and hash-ops must be > 0")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := logging.New(cfg.Log)

	ctx := context.Background()

	addr, useEmbedded := redisTarget(cfg.Redis, *redisAddr, *embedded)

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if useEmbedded {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	engine, err := authcore.New().
		WithConfig(cfg).
		WithLogger(logger).
		WithRedis(client).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr, promexport.NewCollector(engine))
	}

	salts := engine.Salts()
	states, err := seed(ctx, engine, salts, *identities)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	tokenStats := runPhase(*ops, *concurrency, 7919, func(r *mrand.Rand) error {
		st := &states[r.Intn(len(states))]
		salt, err := salts.Get(ctx, st.name)
		if err != nil {
			return err
		}
		_, err = engine.ValidateTokenString(st.token, salt)
		return err
	})

	jwtStats := runPhase(*ops, *concurrency, 6151, func(r *mrand.Rand) error {
		st := &states[r.Intn(len(states))]
		_, err := engine.ResolveStandardToken(ctx, st.jwt, salts.Key)
		return err
	})

	var rejected atomic.Int64
	hashStats := runPhase(*hashOps, *concurrency, 104729, func(r *mrand.Rand) error {
		st := &states[r.Intn(len(states))]
		content := password.NewContentToHash(fmt.Sprintf("secret-%s", st.name), st.salt)
		reference, err := engine.Hash(ctx, content)
		if err == nil {
			_, err = engine.Validate(ctx, content, reference)
		}
		if errors.Is(err, password.ErrSchedulingUnavailable) {
			rejected.Add(1)
		}
		return err
	})

	fmt.Println("---- results ----")
	printStats("validate_token", tokenStats)
	printStats("resolve_jwt", jwtStats)
	printStats("hash+validate", hashStats)
	fmt.Printf("pool rejections: %d\n", rejected.Load())
}

// loadConfig reads path when given. Without a file or env secrets it falls
// back to random secrets so the tool runs out of the box.
func loadConfig(path string) (authcore.Config, error) {
	if path != "" || os.Getenv("AUTHCORE_HASH_PEPPER") != "" {
		return authcore.LoadConfig(path)
	}

	cfg := authcore.DefaultConfig()
	cfg.HashPepper = randomSecret(32)
	cfg.TokenKey = randomSecret(64)
	cfg.Log.Level = "warn"
	return cfg, cfg.Validate()
}

// redisTarget picks the Redis address. An explicit address wins over the
// config and disables the embedded server; an empty address forces it.
func redisTarget(cfg authcore.RedisConfig, override string, embedded bool) (string, bool) {
	if override != "" {
		return override, false
	}
	if cfg.Addr == "" {
		return "", true
	}
	return cfg.Addr, embedded
}

func randomSecret(n int) authcore.Secret {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func seed(ctx context.Context, engine *authcore.Engine, salts *saltstore.Store, n int) ([]identityState, error) {
	states := make([]identityState, n)
	fmt.Printf("seeding %d identities...\n", n)
	start := time.Now()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("user-%d", i)
		salt, err := salts.Ensure(ctx, name)
		if err != nil {
			return nil, err
		}
		tok, err := engine.IssueToken(name, salt)
		if err != nil {
			return nil, err
		}
		key, err := salts.Key(ctx, name)
		if err != nil {
			return nil, err
		}
		jwtStr, err := engine.EncodeStandardToken(name, key)
		if err != nil {
			return nil, err
		}
		states[i] = identityState{name: name, salt: salt, token: tok.String(), jwt: jwtStr}
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return states, nil
}

func serveMetrics(logger *slog.Logger, addr string, collector *promexport.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}

func runPhase(ops, concurrency int, seedPrime int64, op func(r *mrand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*seedPrime))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
