package config

import "time"

// Config holds runtime settings for the PaperSwipe CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the library gRPC endpoint.
//   - DatabasePath: SQLite file backing local preferences and kept items.
//   - ArxivEndpoint: arXiv Atom query API.
//   - RequestInterval: minimum gap between two arXiv requests.
//   - RequestTimeout: deadline for a single network call.
//   - BatchSize: feed items appended per load.
//   - PrefetchThreshold: remaining items below which the feed prefetches.
//   - DefaultTopic: browse topic used when none is selected.
//   - OnlineCheckInterval: period of the server liveness probe.
//   - LogLevel, LogFile: logger settings; an empty LogFile logs to stderr.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	ArxivEndpoint       string
	RequestInterval     time.Duration
	RequestTimeout      time.Duration
	BatchSize           int
	PrefetchThreshold   int
	DefaultTopic        string
	OnlineCheckInterval time.Duration
	LogLevel            string
	LogFile             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "paperswipe.db"
	c.ArxivEndpoint = "https://export.arxiv.org/api/query"
	c.RequestInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.BatchSize = 20
	c.PrefetchThreshold = 5
	c.DefaultTopic = "cs.AI"
	c.OnlineCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
