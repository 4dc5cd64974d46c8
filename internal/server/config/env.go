package config

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/codepulse/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name in the env tags.
const EnvPrefix = "CODEPULSE_"

// parseEnv loads an optional dotenv file (-env-file, or ./.env) without
// overriding variables already present, then overlays every CODEPULSE_*
// variable that is set. Unset variables leave the field untouched; a secret
// set explicitly to "" clears any earlier value so Validate rejects it.
func parseEnv(cfg *Config) {
	file := flagx.EnvFileFlags()
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			panic(err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}

	if v, ok := os.LookupEnv(EnvPrefix + "JWT_SECRET"); ok && v == "" {
		cfg.SecretKey = ""
	}
}
