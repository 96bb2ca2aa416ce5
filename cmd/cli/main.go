package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/paperswipe/internal/buildinfo"
	"github.com/dmitrijs2005/paperswipe/internal/client/cli"
	"github.com/dmitrijs2005/paperswipe/internal/client/client"
	"github.com/dmitrijs2005/paperswipe/internal/client/config"
	"github.com/dmitrijs2005/paperswipe/internal/client/feed"
	"github.com/dmitrijs2005/paperswipe/internal/client/kept"
	"github.com/dmitrijs2005/paperswipe/internal/client/preferences"
	"github.com/dmitrijs2005/paperswipe/internal/client/provider"
	"github.com/dmitrijs2005/paperswipe/internal/client/services"
	"github.com/dmitrijs2005/paperswipe/internal/client/storage"
	"github.com/dmitrijs2005/paperswipe/internal/filex"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logOut, closeLog, err := logOutput(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger, err := logging.NewTextLogger(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return err
	}
	db, store, err := storage.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	prefs, err := preferences.New(ctx, store, logger)
	if err != nil {
		return err
	}

	apiClient, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		return err
	}
	defer apiClient.Close()

	engine, err := kept.New(ctx, store, apiClient, logger, kept.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}
	defer engine.Close()

	arxiv := provider.NewArxivProvider(cfg.ArxivEndpoint, cfg.RequestInterval, cfg.RequestTimeout, logger)
	feedCtl := feed.NewController(arxiv, prefs, feed.Config{
		BatchSize:         cfg.BatchSize,
		PrefetchThreshold: cfg.PrefetchThreshold,
		DefaultTopic:      cfg.DefaultTopic,
		RequestTimeout:    cfg.RequestTimeout,
	}, logger)
	defer feedCtl.Wait()

	auth := services.NewAuthService(apiClient, store, engine, logger)

	app := cli.NewApp(cli.Deps{
		Auth:                auth,
		Browse:              services.NewBrowseService(feedCtl, prefs, engine, logger),
		Feed:                feedCtl,
		Prefs:               prefs,
		Kept:                engine,
		Library:             services.NewLibraryService(engine, apiClient),
		Logger:              logger,
		In:                  os.Stdin,
		Out:                 os.Stdout,
		OnlineCheckInterval: cfg.OnlineCheckInterval,
		DefaultTopic:        cfg.DefaultTopic,
	})

	app.Run(ctx)
	return nil
}

func logOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
