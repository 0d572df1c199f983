package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/flagx"
	"github.com/dmitrijs2005/gophcourse/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Fields absent from the file keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PresignTTL                 timex.Duration `json:"s3_presign_ttl"`

	WebhookSecret      string         `json:"webhook_secret"`
	SecretTTL          timex.Duration `json:"secret_ttl"`
	SecretRetention    timex.Duration `json:"secret_retention"`
	CredentialLength   int            `json:"credential_length"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	SweepInterval      timex.Duration `json:"sweep_interval"`
	RedirectPath       string         `json:"redirect_path"`
	DefaultDisplayName string         `json:"default_display_name"`
	AcceptedStatuses   []string       `json:"accepted_statuses"`
	CatalogFile        string         `json:"catalog_file"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
	RevealRateLimit    int            `json:"reveal_rate_limit"`
	AllowedOrigins     []string       `json:"allowed_origins"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags. If it
// is not set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.S3PresignTTL, c.S3PresignTTL)

	setString(&config.WebhookSecret, c.WebhookSecret)
	setDuration(&config.SecretTTL, c.SecretTTL)
	setDuration(&config.SecretRetention, c.SecretRetention)
	if c.CredentialLength > 0 {
		config.CredentialLength = c.CredentialLength
	}
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.SweepInterval, c.SweepInterval)
	setString(&config.RedirectPath, c.RedirectPath)
	setString(&config.DefaultDisplayName, c.DefaultDisplayName)
	if len(c.AcceptedStatuses) > 0 {
		config.AcceptedStatuses = c.AcceptedStatuses
	}
	setString(&config.CatalogFile, c.CatalogFile)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	if c.RevealRateLimit > 0 {
		config.RevealRateLimit = c.RevealRateLimit
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
