package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":9090", c.MetricsAddr)
	assert.Equal(t, 15*time.Minute, c.ExportURLValidity)
	assert.Equal(t, "exports", c.S3Bucket)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	withArgs(t)

	var want Config
	want.LoadDefaults()

	if diff := cmp.Diff(&want, LoadConfig()); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeTempFile(t, "server.yaml",
		"endpoint_addr_grpc: \":7000\"\ns3_bucket: from-file\nexport_url_validity: 1h\naccess_token_validity_duration: 2m\n")
	withArgs(t, "-c", path, "-b", "from-flag", "-t", "5")

	cfg := LoadConfig()

	assert.Equal(t, ":7000", cfg.EndpointAddrGRPC)
	assert.Equal(t, "from-flag", cfg.S3Bucket)
	assert.Equal(t, time.Hour, cfg.ExportURLValidity)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
}

func Test_parseFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeTempFile(t, "server.json",
			`{"database_dsn":"postgres://db/x","secret_key":"k","token_cleanup_interval":"10m","s3_access_key":"ak"}`)
		withArgs(t, "-config", path)

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "postgres://db/x", cfg.DatabaseDSN)
		assert.Equal(t, "k", cfg.SecretKey)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, 10*time.Minute, cfg.TokenCleanupInterval)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC, "absent keys keep defaults")
	})

	t.Run("invalid yaml panics", func(t *testing.T) {
		withArgs(t, "-c", writeTempFile(t, "bad.yml", "export_url_validity: [not a duration"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}

func TestParseFlags(t *testing.T) {
	t.Run("all flags", func(t *testing.T) {
		withArgs(t, "-a", ":1", "-m", ":2", "-d", "dsn", "-s", "sk", "-t", "3", "-r", "60", "-e", "http://s3", "-b", "bk", "-x", "2h", "-k", "0s", "-l", "debug")

		cfg := &Config{}
		parseFlags(cfg)

		want := &Config{
			EndpointAddrGRPC:             ":1",
			MetricsAddr:                  ":2",
			DatabaseDSN:                  "dsn",
			SecretKey:                    "sk",
			AccessTokenValidityDuration:  3 * time.Minute,
			RefreshTokenValidityDuration: time.Hour,
			S3Endpoint:                   "http://s3",
			S3Bucket:                     "bk",
			ExportURLValidity:            2 * time.Hour,
			LogLevel:                     "debug",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("parseFlags() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("bad minutes panic", func(t *testing.T) {
		withArgs(t, "-t", "soon")
		require.Panics(t, func() { parseFlags(&Config{}) })
	})
}
