package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/paperswipe/internal/flagx"
)

// parseFlags overlays command-line flags on cfg. Durations use Go syntax
// ("3s", "1m"). It panics on invalid values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "a", "d", "e", "b", "p", "t", "i", "w", "l", "o")

	fs := flag.NewFlagSet("paperswipe", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "library server address")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.ArxivEndpoint, "e", cfg.ArxivEndpoint, "arXiv query endpoint")
	fs.IntVar(&cfg.BatchSize, "b", cfg.BatchSize, "feed batch size")
	fs.IntVar(&cfg.PrefetchThreshold, "p", cfg.PrefetchThreshold, "prefetch when fewer papers remain")
	fs.StringVar(&cfg.DefaultTopic, "t", cfg.DefaultTopic, "default browse topic")
	fs.DurationVar(&cfg.RequestInterval, "i", cfg.RequestInterval, "minimum gap between arXiv requests")
	fs.DurationVar(&cfg.RequestTimeout, "w", cfg.RequestTimeout, "network call timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFile, "o", cfg.LogFile, "log file (stderr when empty)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
