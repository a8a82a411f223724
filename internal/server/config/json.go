package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/focustodo/internal/flagx"
	"github.com/dmitrijs2005/focustodo/internal/timex"
)

// jsonConfig mirrors Config for file decoding. Durations accept "15m" or
// integer nanoseconds; absent keys leave the current value untouched.
type jsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	GRPCAddr                     *string         `json:"grpc_addr"`
	LogLevel                     *string         `json:"log_level"`
	Storage                      *string         `json:"storage"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MailProvider                 *string         `json:"mail_provider"`
	ResendAPIKey                 *string         `json:"resend_api_key"`
	ResendBaseURL                *string         `json:"resend_base_url"`
	FromEmail                    *string         `json:"from_email"`
	FromName                     *string         `json:"from_name"`
	SiteURL                      *string         `json:"site_url"`
	S3AccessKey                  *string         `json:"s3_access_key"`
	S3SecretKey                  *string         `json:"s3_secret_key"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// parseJSON overlays values from the file given by -c / -config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setString(&config.MailProvider, c.MailProvider)
	setString(&config.ResendAPIKey, c.ResendAPIKey)
	setString(&config.ResendBaseURL, c.ResendBaseURL)
	setString(&config.FromEmail, c.FromEmail)
	setString(&config.FromName, c.FromName)
	setString(&config.SiteURL, c.SiteURL)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}
