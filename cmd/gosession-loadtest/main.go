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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/redisstore"
	"github.com/MrEthical07/goSession/session"
)

func main() {
	_ = godotenv.Load()

	var (
		sessions    = flag.Int("sessions", 100000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (increment + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gs", "session key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
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

	backing := redisstore.New(client, *prefix)

	cfg := goSession.DefaultConfig()
	cfg.Cleanup.Interval = time.Hour
	cfg.Metrics.Enabled = true

	manager, err := goSession.New().
		WithConfig(cfg).
		WithDatabase(backing).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	ids := make([]string, *sessions)
	for i := 0; i < *sessions; i++ {
		sid, err := manager.CreateSession(ctx, fmt.Sprintf("u-%d", i), fmt.Sprintf("user-%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = sid

		// Seed the backing store at a higher version so refreshes apply.
		rec := session.Record{
			SessionID:       sid,
			UserID:          fmt.Sprintf("u-%d", i),
			Username:        fmt.Sprintf("user-%d", i),
			IsAuthenticated: true,
			AccessCount:     uint64(i % 13),
			LoginTime:       time.Now(),
			LastActivity:    time.Now(),
		}
		if err := backing.Save(ctx, rec, uint64(i%7)+1, 24*time.Hour); err != nil {
			fmt.Fprintf(os.Stderr, "seed save failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	incrementStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		return manager.IncrementAccess(ctx, ids[r.Intn(len(ids))])
	})
	refreshStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		_, err := manager.RefreshFromDatabase(ctx, ids[r.Intn(len(ids))])
		return err
	})
	deleteStats := runDeletePhase(ctx, manager, ids, *concurrency)

	fmt.Println("---- results ----")
	printStats("increment", incrementStats)
	printStats("refresh", refreshStats)
	printStats("delete", deleteStats)

	sweepStart := time.Now()
	for manager.GetCleanupQueueSize() > 0 {
		manager.RunCleanup(ctx)
	}
	fmt.Printf("cleanup queue drained in %s, dead letters=%d\n",
		time.Since(sweepStart).Round(time.Millisecond), len(manager.DeadLetters()))

	stats := manager.GetStats()
	fmt.Printf("stats: total=%d active=%d hits=%d misses=%d failed_cleanups=%d\n",
		stats.TotalSessions, stats.ActiveSessions, stats.CacheHits, stats.CacheMisses, stats.FailedCleanups)
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
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

func runDeletePhase(ctx context.Context, manager *goSession.Manager, ids []string, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(ids))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(ids) {
					return
				}
				t0 := time.Now()
				err := manager.DeleteSession(ctx, ids[i])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
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
