// Package control assembles the guardian components from configuration and
// runs their background loops.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vietddude/guardian/internal/connectivity"
	"github.com/vietddude/guardian/internal/core/config"
	"github.com/vietddude/guardian/internal/core/worker"
	"github.com/vietddude/guardian/internal/errhandling"
	"github.com/vietddude/guardian/internal/errhandling/notify"
	"github.com/vietddude/guardian/internal/health"
	"github.com/vietddude/guardian/internal/infra/api"
	redisclient "github.com/vietddude/guardian/internal/infra/redis"
	"github.com/vietddude/guardian/internal/infra/storage"
	"github.com/vietddude/guardian/internal/infra/storage/memory"
	"github.com/vietddude/guardian/internal/infra/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

// Guardian owns the error handler, the network monitor and the diagnostics
// server.
type Guardian struct {
	handler      *errhandling.Handler
	monitor      *connectivity.Monitor
	probe        *connectivity.ProbeSignal
	healthServer *health.Server
	pruner       *worker.Pruner
	journal      storage.IncidentRepository
	apiClient    *api.Client
	maxRetries   int
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewGuardian creates a Guardian with all dependencies initialized. The
// journal is PostgreSQL when database.url is set and in-memory otherwise.
// Statistics are mirrored to Redis when redis.url is set.
func NewGuardian(ctx context.Context, cfg *config.AppConfig, notifier notify.Notifier) (*Guardian, error) {
	g := &Guardian{
		maxRetries: cfg.Recovery.MaxRetries,
		log:        slog.Default().With("component", "guardian"),
	}
	if notifier == nil {
		notifier = notify.NewLog(slog.Default())
	}

	// 1. Initialize Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		g.db = db
		g.journal = postgres.NewIncidentRepo(db)
		g.log.Info("Using PostgreSQL incident journal")
	} else {
		g.journal = memory.NewIncidentRepo()
		g.log.Info("Using in-memory incident journal")
	}

	var mirror errhandling.StatsMirror
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			g.closeStores()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		g.redisClient = rc
		mirror = redisclient.NewStatsStore(rc)
		g.log.Info("Mirroring error statistics to Redis")
	}

	// 2. API client and credentials
	var refresher *api.Refresher
	if cfg.API.BaseURL != "" {
		g.apiClient = api.NewClient(cfg.API)
		refresher = api.NewRefresher(g.apiClient, cfg.API.RefreshPath, cfg.API.RefreshToken)
	}

	// 3. Error handler
	hcfg := errhandling.Config{
		Recovery: cfg.Recovery,
		Notifier: notifier,
		Mirror:   mirror,
		Journal:  g.journal,
	}
	if refresher != nil {
		hcfg.Refresher = refresher
	}
	g.handler = errhandling.NewHandler(hcfg)

	// 4. Connectivity
	var signal connectivity.Signal
	if cfg.Connectivity.Address != "" {
		g.probe = connectivity.NewProbeSignal(cfg.Connectivity, nil, slog.Default())
		signal = g.probe
	} else {
		signal = connectivity.NewManualSignal(cfg.Connectivity.InitialOnline)
	}
	g.monitor = connectivity.NewMonitor(signal, notifier, slog.Default())

	// 5. Workers and diagnostics
	g.pruner = worker.NewPruner(cfg.Journal.Retention, g.journal)
	g.healthServer = health.NewServer(g.handler, g.monitor, cfg.Server.Port)

	return g, nil
}

// Handler returns the error handler.
func (g *Guardian) Handler() *errhandling.Handler { return g.handler }

// Monitor returns the network monitor.
func (g *Guardian) Monitor() *connectivity.Monitor { return g.monitor }

// Journal returns the incident journal.
func (g *Guardian) Journal() storage.IncidentRepository { return g.journal }

// APIClient returns the platform API client, or nil when api.base_url is unset.
func (g *Guardian) APIClient() *api.Client { return g.apiClient }

// GRPCInterceptor returns a unary client interceptor that reports failed
// calls to the handler and retries them while it allows.
func (g *Guardian) GRPCInterceptor() grpc.UnaryClientInterceptor {
	return api.UnaryErrorInterceptor(g.handler, g.maxRetries, errhandling.Options{})
}

// Run starts the background loops and blocks until ctx is cancelled or one of
// them fails.
func (g *Guardian) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := g.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return g.healthServer.Stop(shutdownCtx)
	})

	if g.probe != nil {
		eg.Go(func() error {
			if err := g.probe.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		g.pruner.Start(ctx)
		return nil
	})

	if g.db != nil {
		g.db.StartMetricsCollector(ctx)
	}

	g.log.Info("Guardian started")
	return eg.Wait()
}

// Close releases the monitor and the storage connections.
func (g *Guardian) Close() error {
	g.log.Info("Stopping Guardian...")
	g.monitor.Close()
	return g.closeStores()
}

func (g *Guardian) closeStores() error {
	var errs []error
	if g.redisClient != nil {
		if err := g.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if g.db != nil {
		if err := g.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
