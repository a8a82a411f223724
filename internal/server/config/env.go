package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// envConfig lists the recognised environment variables. envdecode leaves a
// field untouched when its variable is unset.
type envConfig struct {
	HTTPAddr                     string        `env:"HTTP_ADDR"`
	GRPCAddr                     string        `env:"GRPC_ADDR"`
	LogLevel                     string        `env:"LOG_LEVEL"`
	Storage                      string        `env:"STORAGE"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	SecretKey                    string        `env:"JWT_SECRET"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_TTL"`
	MailProvider                 string        `env:"MAIL_PROVIDER"`
	ResendAPIKey                 string        `env:"RESEND_API_KEY"`
	ResendBaseURL                string        `env:"RESEND_BASE_URL"`
	FromEmail                    string        `env:"FROM_EMAIL"`
	FromName                     string        `env:"FROM_NAME"`
	SiteURL                      string        `env:"SITE_URL"`
	S3AccessKey                  string        `env:"S3_ACCESS_KEY"`
	S3SecretKey                  string        `env:"S3_SECRET_KEY"`
	S3Bucket                     string        `env:"S3_BUCKET"`
	S3Region                     string        `env:"S3_REGION"`
	S3BaseEndpoint               string        `env:"S3_BASE_ENDPOINT"`
}

// parseEnv loads the dotenv file named by -env (or ./.env when present)
// without overriding variables already set, then overlays the environment.
func parseEnv(config *Config, args []string) error {
	if path := flagx.EnvFileFlag(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	e := envConfig{
		HTTPAddr:                     config.HTTPAddr,
		GRPCAddr:                     config.GRPCAddr,
		LogLevel:                     config.LogLevel,
		Storage:                      config.Storage,
		DatabaseDSN:                  config.DatabaseDSN,
		SecretKey:                    config.SecretKey,
		AccessTokenValidityDuration:  config.AccessTokenValidityDuration,
		RefreshTokenValidityDuration: config.RefreshTokenValidityDuration,
		MailProvider:                 config.MailProvider,
		ResendAPIKey:                 config.ResendAPIKey,
		ResendBaseURL:                config.ResendBaseURL,
		FromEmail:                    config.FromEmail,
		FromName:                     config.FromName,
		SiteURL:                      config.SiteURL,
		S3AccessKey:                  config.S3AccessKey,
		S3SecretKey:                  config.S3SecretKey,
		S3Bucket:                     config.S3Bucket,
		S3Region:                     config.S3Region,
		S3BaseEndpoint:               config.S3BaseEndpoint,
	}
	if err := envdecode.Decode(&e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("decode environment: %w", err)
	}

	config.HTTPAddr = e.HTTPAddr
	config.GRPCAddr = e.GRPCAddr
	config.LogLevel = e.LogLevel
	config.Storage = e.Storage
	config.DatabaseDSN = e.DatabaseDSN
	config.SecretKey = e.SecretKey
	config.AccessTokenValidityDuration = e.AccessTokenValidityDuration
	config.RefreshTokenValidityDuration = e.RefreshTokenValidityDuration
	config.MailProvider = e.MailProvider
	config.ResendAPIKey = e.ResendAPIKey
	config.ResendBaseURL = e.ResendBaseURL
	config.FromEmail = e.FromEmail
	config.FromName = e.FromName
	config.SiteURL = e.SiteURL
	config.S3AccessKey = e.S3AccessKey
	config.S3SecretKey = e.S3SecretKey
	config.S3Bucket = e.S3Bucket
	config.S3Region = e.S3Region
	config.S3BaseEndpoint = e.S3BaseEndpoint
	return nil
}
