// Package server wires the library server together: PostgreSQL, the export
// bucket, the gRPC endpoint, the Prometheus endpoint and the refresh token
// sweep.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/logging"
	"github.com/dmitrijs2005/paperswipe/internal/server/config"
	"github.com/dmitrijs2005/paperswipe/internal/server/objectstore"
	"github.com/dmitrijs2005/paperswipe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/paperswipe/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/paperswipe/internal/server/grpc"
)

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	users    *services.UserService
	library  *services.LibraryService
	registry *prometheus.Registry
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN, rm)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		users:    services.NewUserService(db, rm, cfg),
		library:  services.NewLibraryService(db, rm, store, cfg),
		registry: reg,
	}, nil
}

// Run blocks until ctx is done or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.library, gs.NewMetrics(app.registry))
	g.Go(func() error { return grpcServer.Run(ctx) })

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", app.config.MetricsAddr)
			if err != nil {
				return err
			}
			return app.serveMetrics(ctx, lis)
		})
	}

	g.Go(func() error {
		app.runTokenCleanup(ctx, app.users, app.config.TokenCleanupInterval)
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) serveMetrics(ctx context.Context, lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry}))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runTokenCleanup deletes expired refresh tokens every interval until ctx is
// done. A non-positive interval disables the sweep.
func (app *App) runTokenCleanup(ctx context.Context, p tokenPurger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "refresh token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "expired refresh tokens removed", "count", n)
			}
		}
	}
}
