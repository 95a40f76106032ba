// Command authcore-loadtest exercises the engine's hot paths against a real
// or embedded redis and reports throughput and latency percentiles for the
// authenticate and revocation-check phases.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/commercekit/authcore"
)

type seededUser struct {
	id    string
	token string
}

type loadProvider struct {
	users map[string]authcore.User
}

func (p *loadProvider) GetUserByID(_ context.Context, userID string) (authcore.User, bool, error) {
	u, ok := p.users[userID]
	return u, ok, nil
}

func (p *loadProvider) GetUserByIdentifier(_ context.Context, identifier string) (authcore.User, bool, error) {
	for _, u := range p.users {
		if u.Identifier == identifier {
			return u, true, nil
		}
	}
	return authcore.User{}, false, nil
}

func (p *loadProvider) SetBlocked(context.Context, string, bool) error {
	return nil
}

func main() {
	var (
		userCount   = flag.Int("users", 10000, "number of users to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *userCount <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		cleanup = mr.Close
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		cleanup = func() {}
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	provider := &loadProvider{users: make(map[string]authcore.User, *userCount)}
	for i := 0; i < *userCount; i++ {
		id := fmt.Sprintf("u-%d", i)
		provider.users[id] = authcore.User{
			ID:             id,
			Identifier:     fmt.Sprintf("user-%d@example.com", i),
			CredentialHash: "load-password",
		}
	}

	cfg := authcore.DefaultConfig()
	cfg.Token.Secret = []byte("loadtest-secret-0123456789abcdef")
	cfg.RateLimit.Enabled = false
	cfg.Devices.Enabled = false
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := authcore.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(provider).
		WithCredentialVerifier(authcore.CredentialVerifierFunc(func(password, hash string) (bool, error) {
			return password == hash, nil
		})).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d users...\n", *userCount)
	startSeed := time.Now()
	seeded := make([]seededUser, *userCount)
	for i := 0; i < *userCount; i++ {
		id := fmt.Sprintf("u-%d", i)
		result, err := engine.Login(ctx, fmt.Sprintf("user-%d@example.com", i), "load-password")
		if err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		seeded[i] = seededUser{id: id, token: result.Token}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authStats := runAuthenticatePhase(ctx, engine, seeded, *ops, *concurrency)
	revokeStats := runRevokedCheckPhase(ctx, engine, seeded, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("revoked-check", revokeStats)
}

func runAuthenticatePhase(ctx context.Context, engine *authcore.Engine, seeded []seededUser, ops, concurrency int) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(seeded))
				t0 := time.Now()
				_, err := engine.Authenticate(ctx, "Bearer "+seeded[idx].token)
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

// runRevokedCheckPhase revokes a slice of the seeded tokens first, then
// measures authenticate over the whole population so the phase mixes hits
// against live and revoked entries.
func runRevokedCheckPhase(ctx context.Context, engine *authcore.Engine, seeded []seededUser, ops, concurrency int) phaseStats {
	revoked := len(seeded) / 10
	if revoked == 0 {
		revoked = 1
	}
	for i := 0; i < revoked; i++ {
		if err := engine.RevokeToken(ctx, seeded[i].id, seeded[i].token); err != nil {
			fmt.Fprintf(os.Stderr, "revoke failed: %v\n", err)
			os.Exit(1)
		}
	}

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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(seeded))
				t0 := time.Now()
				_, err := engine.Authenticate(ctx, "Bearer "+seeded[idx].token)
				d := time.Since(t0)
				if err != nil && idx >= revoked {
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
