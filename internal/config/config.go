package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting for the API server. Values come from
// app.yml with environment-variable overrides (dots become underscores, so
// auth.jwtSecret is AUTH_JWTSECRET).
type Config struct {
	APIPort  int `mapstructure:"apiPort"`
	Database struct {
		Type            string `mapstructure:"type"` // "postgres" or "sqlite"
		Path            string `mapstructure:"path"` // sqlite only
		Host            string `mapstructure:"host"`
		Port            string `mapstructure:"port"`
		User            string `mapstructure:"user"`
		Password        string `mapstructure:"password"`
		Name            string `mapstructure:"name"`
		SSLMode         string `mapstructure:"sslMode"`
		MaxConns        int    `mapstructure:"maxConns"`
		MaxIdle         int    `mapstructure:"maxIdle"`
		ConnMaxLifetime string `mapstructure:"connMaxLifetime"`
		MaxRetries      int    `mapstructure:"maxRetries"`
		RetryDelay      int    `mapstructure:"retryDelay"`
	} `mapstructure:"database"`
	Auth struct {
		JWTSecret      string        `mapstructure:"jwtSecret"`
		AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
		// Optional bootstrap admin; created at startup when the email is
		// not yet registered.
		AdminEmail    string `mapstructure:"adminEmail"`
		AdminPassword string `mapstructure:"adminPassword"`
	} `mapstructure:"auth"`
	Mail struct {
		ResendAPIKey string `mapstructure:"resendApiKey"`
		FromAddress  string `mapstructure:"fromAddress"`
	} `mapstructure:"mail"`
	Storage struct {
		Endpoint        string `mapstructure:"endpoint"`
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		AccessKeyID     string `mapstructure:"accessKeyId"`
		SecretAccessKey string `mapstructure:"secretAccessKey"`
	} `mapstructure:"storage"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// ErrMissingJWTSecret is returned when no signing secret is configured. The
// token issuer cannot run without one, so main treats this as fatal.
var ErrMissingJWTSecret = errors.New("auth.jwtSecret is not configured")

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Env-only keys need an explicit binding for AutomaticEnv to surface
	// them through Unmarshal.
	for _, key := range []string{
		"apiPort",
		"database.type", "database.path", "database.host", "database.port",
		"database.user", "database.password", "database.name", "database.sslMode",
		"auth.jwtSecret", "auth.accessTokenTTL", "auth.adminEmail", "auth.adminPassword",
		"mail.resendApiKey", "mail.fromAddress",
		"storage.endpoint", "storage.region", "storage.bucket",
		"storage.accessKeyId", "storage.secretAccessKey",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("APIPort not specified, using default 8081")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
		log.Println("Database type not specified, using default sqlite")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/data/crimewatch.db"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "require"
	}
	if cfg.Database.MaxRetries == 0 {
		cfg.Database.MaxRetries = 5
	}
	if cfg.Database.RetryDelay == 0 {
		cfg.Database.RetryDelay = 5
	}

	// The signing secret has no default on purpose.
	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.Auth.AccessTokenTTL == 0 {
		cfg.Auth.AccessTokenTTL = 15 * time.Minute
	}

	if cfg.Mail.FromAddress == "" {
		cfg.Mail.FromAddress = "CrimeWatch <onboarding@resend.dev>"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	return &cfg, nil
}
