package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/paperswipe/internal/flagx"
	"github.com/dmitrijs2005/paperswipe/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file decoding. Zero values
// mean "not set" and leave the runtime Config untouched.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	ArxivEndpoint       string         `json:"arxiv_endpoint" yaml:"arxiv_endpoint"`
	RequestInterval     timex.Duration `json:"request_interval" yaml:"request_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	BatchSize           int            `json:"batch_size" yaml:"batch_size"`
	PrefetchThreshold   int            `json:"prefetch_threshold" yaml:"prefetch_threshold"`
	DefaultTopic        string         `json:"default_topic" yaml:"default_topic"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFile             string         `json:"log_file" yaml:"log_file"`
}

// parseFile overlays cfg with values from the file named by -c/-config.
// It panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.ArxivEndpoint, fc.ArxivEndpoint)
	setString(&cfg.DefaultTopic, fc.DefaultTopic)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)

	if fc.RequestInterval.Duration > 0 {
		cfg.RequestInterval = fc.RequestInterval.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.BatchSize > 0 {
		cfg.BatchSize = fc.BatchSize
	}
	if fc.PrefetchThreshold > 0 {
		cfg.PrefetchThreshold = fc.PrefetchThreshold
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
