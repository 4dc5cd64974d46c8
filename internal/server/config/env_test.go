package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_OverlaysSetVariables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "absent.env")}

	t.Setenv("CODEPULSE_JWT_SECRET", "from-env")
	t.Setenv("CODEPULSE_ACCESS_TOKEN_TTL", "20m")
	t.Setenv("CODEPULSE_PASSWORD_REQUIRE_UPPERCASE", "true")
	t.Setenv("CODEPULSE_MAX_IMAGE_SIZE", "2048")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
	assert.True(t, cfg.PasswordPolicy.RequireUppercase)
	assert.Equal(t, 3, cfg.PasswordPolicy.RequiredLength)
	assert.Equal(t, int64(2048), cfg.MaxImageSize)
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
}

func Test_parseEnv_LoadsDotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// registered first so t.Setenv restores the original state afterwards
	t.Setenv("CODEPULSE_ADMIN_PASSWORD", "")
	require.NoError(t, os.Unsetenv("CODEPULSE_ADMIN_PASSWORD"))

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("CODEPULSE_ADMIN_PASSWORD=MakeItSo\n"), 0o600))
	os.Args = []string{"testbin", "-env-file", file}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "MakeItSo", cfg.AdminPassword)
}

func Test_parseEnv_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "absent.env")}

	t.Setenv("CODEPULSE_MAX_IMAGE_SIZE", "big")

	require.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_parseEnv_ExplicitEmptySecretClears(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "absent.env")}

	t.Setenv("CODEPULSE_JWT_SECRET", "")

	cfg := &Config{SecretKey: "from-json"}
	parseEnv(cfg)

	assert.Empty(t, cfg.SecretKey)
	require.Error(t, cfg.Validate())
}
