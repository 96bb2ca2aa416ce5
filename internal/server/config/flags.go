package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags:
//
//	-a string   gRPC bind address
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN
//	-s string   token signing key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-e string   S3 endpoint
//	-b string   S3 bucket
//	-x duration export link validity
//	-k duration expired token sweep period, 0 disables
//	-l string   log level
//
// It panics on invalid values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "a", "m", "d", "s", "t", "r", "e", "b", "x", "k", "l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "address and port of the metrics endpoint")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.DurationVar(&cfg.ExportURLValidity, "x", cfg.ExportURLValidity, "export link validity")
	fs.DurationVar(&cfg.TokenCleanupInterval, "k", cfg.TokenCleanupInterval, "expired token sweep period")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
	cfg.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
}
