// Command filecached runs a filecache engine as a long-lived daemon,
// exposing Prometheus metrics over HTTP: build the store, serve /metrics,
// run until signaled.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/kvshard/filecache/engine"
	"github.com/kvshard/filecache/metrics/prom"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "filecached",
		Usage: "run an embedded file-backed key/value cache as a daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "root",
				Usage:    "cache root directory",
				Required: true,
				EnvVars:  []string{"FILECACHE_ROOT"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "worker pool size (0 = auto)",
				EnvVars: []string{"FILECACHE_WORKERS"},
			},
			&cli.DurationFlag{
				Name:    "cleanup-interval",
				Usage:   "janitor sweep period",
				Value:   30 * time.Second,
				EnvVars: []string{"FILECACHE_CLEANUP_INTERVAL"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "address to serve Prometheus /metrics on",
				Value:   ":9400",
				EnvVars: []string{"FILECACHE_METRICS_ADDR"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("filecached exited with an error")
	}
}

func run(c *cli.Context, logger zerolog.Logger) error {
	metrics := prom.New(nil, "filecache", "daemon", nil)

	eng, err := engine.Build(engine.Config{
		RootPath:        c.String("root"),
		WorkerCount:     c.Int("workers"),
		CleanupInterval: c.Duration("cleanup-interval"),
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer eng.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := c.String("metrics-addr")
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	stopSummaries := make(chan struct{})
	go logHitMissSummaries(logger, metrics, stopSummaries)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	close(stopSummaries)
	_ = srv.Close()
	return eng.Close()
}

// logHitMissSummaries periodically logs the adapter's local hit/miss
// mirrors, a cheap way to see cache effectiveness in the daemon's own log
// stream without standing up a scrape pipeline.
func logHitMissSummaries(logger zerolog.Logger, metrics *prom.Adapter, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			hits, misses := metrics.Snapshot()
			logger.Info().Uint64("hits", hits).Uint64("misses", misses).Msg("hit/miss summary")
		}
	}
}
