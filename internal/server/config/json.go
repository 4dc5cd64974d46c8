package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/codepulse/internal/flagx"
	"github.com/dmitrijs2005/codepulse/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so "15m" and integer nanoseconds are both accepted. Only
// keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	Issuer                      *string         `json:"issuer"`
	Audience                    *string         `json:"audience"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	PasswordPolicy              *PasswordPolicy `json:"password_policy"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	MaxImageSize                *int64          `json:"max_image_size"`
	AdminEmail                  *string         `json:"admin_email"`
	AdminPassword               *string         `json:"admin_password"`
	AllowAllOrigins             *bool           `json:"allow_all_origins"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c/-config. Nothing is
// loaded when the flag is absent. Unreadable or invalid files panic.
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

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Issuer, c.Issuer)
	setString(&config.Audience, c.Audience)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.PasswordPolicy != nil {
		config.PasswordPolicy = *c.PasswordPolicy
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.MaxImageSize != nil {
		config.MaxImageSize = *c.MaxImageSize
	}
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)
	if c.AllowAllOrigins != nil {
		config.AllowAllOrigins = *c.AllowAllOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
