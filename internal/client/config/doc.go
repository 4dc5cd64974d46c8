// Package config loads runtime configuration for the CodePulse CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. CODEPULSE_CLIENT_* environment variables, after an optional dotenv file.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the CodePulse API
//	-d string   directory holding the local session database
//	-t int      HTTP request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "data_dir": "/home/me/.codepulse",
//	  "request_timeout": "10s"
//	}
package config
