package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/flagx"
	"github.com/dmitrijs2005/paperswipe/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the decoding target for config files. Zero values leave the
// runtime Config untouched.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr" yaml:"metrics_addr"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	S3Endpoint                   string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3AccessKey                  string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey                  string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	ExportURLValidity            timex.Duration `json:"export_url_validity" yaml:"export_url_validity"`
	TokenCleanupInterval         timex.Duration `json:"token_cleanup_interval" yaml:"token_cleanup_interval"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are YAML, anything else JSON. It panics on read or decode
// errors.
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
	for dst, v := range map[*string]string{
		&cfg.EndpointAddrGRPC: fc.EndpointAddrGRPC,
		&cfg.MetricsAddr:      fc.MetricsAddr,
		&cfg.DatabaseDSN:      fc.DatabaseDSN,
		&cfg.SecretKey:        fc.SecretKey,
		&cfg.S3Endpoint:       fc.S3Endpoint,
		&cfg.S3Region:         fc.S3Region,
		&cfg.S3AccessKey:      fc.S3AccessKey,
		&cfg.S3SecretKey:      fc.S3SecretKey,
		&cfg.S3Bucket:         fc.S3Bucket,
		&cfg.LogLevel:         fc.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}

	for dst, v := range map[*time.Duration]timex.Duration{
		&cfg.AccessTokenValidityDuration:  fc.AccessTokenValidityDuration,
		&cfg.RefreshTokenValidityDuration: fc.RefreshTokenValidityDuration,
		&cfg.ExportURLValidity:            fc.ExportURLValidity,
		&cfg.TokenCleanupInterval:         fc.TokenCleanupInterval,
	} {
		if v.Duration > 0 {
			*dst = v.Duration
		}
	}
}
