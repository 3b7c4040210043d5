// Command htbench runs independent hashtable workloads (one table per worker)
// and optionally exposes Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/chaintable/hashtable"
	pmet "github.com/IvanBrykalov/chaintable/metrics/prom"
)

func main() {
	app := kingpin.New("htbench", "Randomized workload against chained hash tables.")

	// Track which flags were given so they can override the YAML file.
	setByUser := map[string]*bool{}
	flag := func(name, help string) *kingpin.FlagClause {
		set := new(bool)
		setByUser[name] = set
		return app.Flag(name, help).IsSetByUser(set)
	}
	var (
		configPath = app.Flag("config", "YAML workload file; flags override it.").String()
		workers    = flag("workers", "Number of workers (one table each).").Int()
		ops        = flag("ops", "Operations per worker.").Int()
		keys       = flag("keys", "Keyspace size.").Int()
		insertPct  = flag("insert-pct", "Insert percentage.").Int()
		stealPct   = flag("steal-pct", "Steal percentage (rest are lookups).").Int()
		seed       = flag("seed", "Random seed.").Int64()
		budget     = flag("budget", "Per-table allocator limit in bytes (0 = unlimited).").Uint64()
		identity   = flag("identity", "Use the identity-keyed specialization.").Bool()
		verify     = flag("verify", "Check every result against a shadow map.").Bool()
		duration   = flag("max-duration", "Stop after this long (0 = run all ops).").Duration()
		httpAddr   = app.Flag("http", "Serve Prometheus metrics at addr (empty = disabled).").String()
		logLevel   = app.Flag("log.level", "Log level: debug, info, warn, error.").Default("info").Enum("debug", "info", "warn", "error")
	)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, levelOption(*logLevel))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	w, err := loadWorkload(*configPath)
	if err != nil {
		level.Error(logger).Log("msg", "loading workload", "err", err)
		os.Exit(1)
	}
	// Explicit flags win over the file.
	override(setByUser, "workers", &w.Workers, *workers)
	override(setByUser, "ops", &w.Ops, *ops)
	override(setByUser, "keys", &w.Keys, *keys)
	override(setByUser, "insert-pct", &w.InsertPct, *insertPct)
	override(setByUser, "steal-pct", &w.StealPct, *stealPct)
	override(setByUser, "seed", &w.Seed, *seed)
	override(setByUser, "budget", &w.Budget, *budget)
	override(setByUser, "identity", &w.Identity, *identity)
	override(setByUser, "verify", &w.Verify, *verify)
	override(setByUser, "max-duration", &w.Duration, *duration)
	if err := w.validate(); err != nil {
		level.Error(logger).Log("msg", "invalid workload", "err", err)
		os.Exit(2)
	}

	var metrics hashtable.Metrics = hashtable.NoopMetrics{}
	if *httpAddr != "" {
		metrics = pmet.New(nil, "chaintable", "htbench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			level.Info(logger).Log("msg", "serving metrics", "addr", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, nil); err != nil {
				level.Error(logger).Log("msg", "metrics server stopped", "err", err)
			}
		}()
	}

	ctx := context.Background()
	if w.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Duration)
		defer cancel()
	}

	level.Info(logger).Log("msg", "starting", "workers", w.Workers, "ops", w.Ops, "keys", w.Keys,
		"identity", w.Identity, "verify", w.Verify, "seed", w.Seed)

	var (
		mu    sync.Mutex
		total result
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < w.Workers; id++ {
		g.Go(func() error {
			res, err := runWorker(gctx, id, w, metrics)
			mu.Lock()
			total.add(res)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "workload failed", "err", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	fmt.Printf("workers=%d keys=%d identity=%v verify=%v dur=%v\n", w.Workers, w.Keys, w.Identity, w.Verify, elapsed)
	fmt.Printf("ops=%d (%.0f ops/s)  inserts=%d  steals=%d  oom=%d\n",
		total.ops, float64(total.ops)/elapsed.Seconds(), total.inserts, total.steals, total.oom)
	fmt.Printf("hits=%d  misses=%d  rehashes=%d  max-chain=%d  entries=%d  bytes=%d\n",
		total.hits, total.misses, total.stats.Rehashes, total.stats.MaxChain, total.stats.Entries, total.stats.Size)
}

// override copies a flag value over the file value when the flag was given.
func override[T any](set map[string]*bool, name string, dst *T, v T) {
	if given := set[name]; given != nil && *given {
		*dst = v
	}
}

func levelOption(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
