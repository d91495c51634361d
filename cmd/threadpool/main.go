package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/fluxorio/threadpool/pkg/config"
	"github.com/fluxorio/threadpool/pkg/core"
	"github.com/fluxorio/threadpool/pkg/core/concurrency"
	"github.com/fluxorio/threadpool/pkg/digest"
	"github.com/fluxorio/threadpool/pkg/observability/prometheus"
	"github.com/fluxorio/threadpool/pkg/observability/tracing"
)

func main() {
	configPath := flag.String("config", os.Getenv("THREADPOOL_CONFIG"), "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.LoadApp(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := core.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to parse log level: %v", err)
	}
	logger := core.NewDefaultLogger()
	core.SetLevel(logger, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, prometheus.DefaultRegistry, prometheus.DefaultRegisterer); err != nil {
		logger.Errorf("threadpool exited: %v", err)
		os.Exit(1)
	}
}

// run starts every configured component, blocks until ctx is done and then
// stops ingress, shuts the pool down and flushes tracing, in that order.
func run(ctx context.Context, cfg config.App, logger core.Logger, gatherer prom.Gatherer, registerer prom.Registerer) (err error) {
	observers := []concurrency.Observer{concurrency.LogObserver(logger)}

	if cfg.Metrics.Enabled {
		observers = append(observers, prometheus.NewPoolMetrics(registerer, cfg.Pool.Name))
	}

	if cfg.Tracing.Enabled {
		tp, shutdownTracing, terr := tracing.NewProvider(ctx, tracing.Config{
			Exporter:    cfg.Tracing.Exporter,
			ZipkinURL:   cfg.Tracing.ZipkinURL,
			ServiceName: cfg.Tracing.ServiceName,
		})
		if terr != nil {
			return terr
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ShutdownTimeout)
			defer cancel()
			if ferr := shutdownTracing(flushCtx); ferr != nil {
				err = errors.Join(err, fmt.Errorf("flush tracing: %w", ferr))
			}
		}()
		observers = append(observers, tracing.NewObserver(tp, cfg.Pool.Name))
		logger.Infof("tracing enabled (%s exporter)", cfg.Tracing.Exporter)
	}

	pool := concurrency.NewFromConfig(
		concurrency.PoolConfig{Name: cfg.Pool.Name, Workers: cfg.Pool.Workers},
		concurrency.WithLogger(logger),
		concurrency.WithObserver(concurrency.Observers(observers...)),
	)
	logger.Infof("pool %s started with %d workers", pool.Name(), pool.Size())

	var metricsServer *prometheus.Server
	if cfg.Metrics.Enabled {
		metricsServer = prometheus.NewServer(cfg.Metrics.Address, cfg.Metrics.Path, gatherer)
		metricsServer.SetLogger(logger)
		if err := metricsServer.Start(); err != nil {
			shutdownPool(pool, cfg, logger)
			return err
		}
		logger.Infof("metrics on %s%s", metricsServer.Addr(), cfg.Metrics.Path)
	}

	var (
		nc  *nats.Conn
		svc *digest.Service
	)
	if cfg.NATS.Enabled {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("threadpool-"+cfg.Pool.Name))
		if err == nil {
			svc = digest.NewService(nc, pool, digest.Config{
				Subject:    cfg.NATS.Subject,
				QueueGroup: cfg.NATS.QueueGroup,
				Logger:     logger,
			})
			err = svc.Start()
		}
		if err != nil {
			if nc != nil {
				nc.Close()
			}
			stopMetrics(metricsServer, cfg, logger)
			shutdownPool(pool, cfg, logger)
			return fmt.Errorf("digest service: %w", err)
		}
	}

	<-ctx.Done()
	logger.Infof("shutting down")

	if svc != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ShutdownTimeout)
		if err := svc.Stop(stopCtx); err != nil {
			logger.Warnf("stopping digest service: %v", err)
		}
		cancel()
	}
	err = shutdownPool(pool, cfg, logger)
	if nc != nil {
		if derr := nc.Drain(); derr != nil {
			logger.Warnf("draining nats connection: %v", derr)
		}
	}
	stopMetrics(metricsServer, cfg, logger)
	return err
}

func shutdownPool(pool *concurrency.Pool, cfg config.App, logger core.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ShutdownTimeout)
	defer cancel()

	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("pool shutdown: %w", err)
	}
	stats := pool.Stats()
	logger.Infof("pool %s stopped: %d submitted, %d completed, %d failed, %d panicked",
		pool.Name(), stats.Submitted, stats.Completed, stats.Failed, stats.Panicked)
	return nil
}

func stopMetrics(srv *prometheus.Server, cfg config.App, logger core.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pool.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("stopping metrics server: %v", err)
	}
}
