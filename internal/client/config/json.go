package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/codepulse/internal/flagx"
	"github.com/dmitrijs2005/codepulse/internal/timex"
)

type JsonConfig struct {
	ServerBaseURL  *string         `json:"server_base_url"`
	DataDir        *string         `json:"data_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.ServerBaseURL != nil {
		config.ServerBaseURL = *c.ServerBaseURL
	}
	if c.DataDir != nil {
		config.DataDir = *c.DataDir
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}
