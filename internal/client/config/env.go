package config

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/codepulse/internal/flagx"
	"github.com/joho/godotenv"
)

const EnvPrefix = "CODEPULSE_CLIENT_"

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
}
