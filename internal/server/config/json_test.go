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

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":             ":9000",
		"endpoint_addr_grpc":             ":9001",
		"database_dsn":                   "postgres://db",
		"secret_key":                     "my_secret_key",
		"issuer":                         "iss",
		"audience":                       "aud",
		"access_token_validity_duration": "90s",
		"password_policy": map[string]any{
			"required_length":       8,
			"required_unique_chars": 2,
			"require_digit":         true,
		},
		"s3_bucket":         "images",
		"max_image_size":    1024,
		"admin_password":    "MakeItSo",
		"allow_all_origins": false,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, ":9001", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "iss", cfg.Issuer)
		assert.Equal(t, "aud", cfg.Audience)
		assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
		assert.Equal(t, PasswordPolicy{RequiredLength: 8, RequiredUniqueChars: 2, RequireDigit: true}, cfg.PasswordPolicy)
		assert.Equal(t, "images", cfg.S3Bucket)
		assert.Equal(t, int64(1024), cfg.MaxImageSize)
		assert.Equal(t, "MakeItSo", cfg.AdminPassword)
		assert.False(t, cfg.AllowAllOrigins)
	})

	t.Run("missing keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-this"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-this", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{SecretKey: "key", EndpointAddrHTTP: "defaults:1234"}
		parseJson(cfg)

		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
