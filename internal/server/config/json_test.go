package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"endpoint_addr_http":              "www.example:8000",
		"database_dsn":                    "course.db",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"s3_bucket":                       "bucket",
		"s3_presign_ttl":                  "30s",
		"webhook_secret":                  "hook",
		"secret_ttl":                      "5m",
		"credential_length":               10,
		"request_timeout":                 "2s",
		"sweep_interval":                  "30s",
		"redirect_path":                   "/thanks",
		"default_display_name":            "Agent",
		"accepted_statuses":               []string{"settled"},
		"catalog_file":                    "catalog.json",
		"log_format":                      "console",
		"log_level":                       "debug",
		"reveal_rate_limit":               3,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "www.example:8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "course.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 30*time.Second, cfg.S3PresignTTL)
		assert.Equal(t, "hook", cfg.WebhookSecret)
		assert.Equal(t, 5*time.Minute, cfg.SecretTTL)
		assert.Equal(t, 10, cfg.CredentialLength)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 30*time.Second, cfg.SweepInterval)
		assert.Equal(t, "/thanks", cfg.RedirectPath)
		assert.Equal(t, "Agent", cfg.DefaultDisplayName)
		assert.Equal(t, []string{"settled"}, cfg.AcceptedStatuses)
		assert.Equal(t, "catalog.json", cfg.CatalogFile)
		assert.Equal(t, "console", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 3, cfg.RevealRateLimit)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"webhook_secret": "only"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only", cfg.WebhookSecret)
		assert.Equal(t, 10*time.Minute, cfg.SecretTTL)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrGRPC: "defaults:1234",
			DatabaseDSN:      "course.db",
			SecretTTL:        2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "course.db", cfg.DatabaseDSN)
		assert.Equal(t, 2*time.Minute, cfg.SecretTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
