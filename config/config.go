package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultCoverURL is the placeholder cover attached to newly created books.
const DefaultCoverURL = "https://images.unsplash.com/photo-1543002588-bfa74002ed7e?auto=format&fit=crop&w=200&q=80"

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port     int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env      string `yaml:"env" env:"ENV" env-default:"development"`
		LogLevel string `yaml:"log_level" env:"LOGLEVEL" env-default:"info"`
	} `yaml:"server"`
	Remote struct {
		Backend string `yaml:"backend" env:"REMOTEBACKEND" env-default:"rest"`
		URL     string `yaml:"url" env:"REMOTEURL"`
		Key     string `yaml:"key" env:"REMOTEKEY"`
		Table   string `yaml:"table" env:"REMOTETABLE" env-default:"books"`
		Timeout string `yaml:"timeout" env:"REMOTETIMEOUT" env-default:"10s"`
	} `yaml:"remote"`
	Database struct {
		DSN          string `yaml:"dsn" env:"DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"MAXOPENCONNS" env-default:"25"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"MAXIDLECONNS" env-default:"25"`
		MaxIdleTime  string `yaml:"max_idle_time" env:"MAXIDLETIME" env-default:"15m"`
	} `yaml:"database"`
	Catalog struct {
		DefaultCoverURL string `yaml:"default_cover_url" env:"COVERURL"`
	} `yaml:"catalog"`
	S3 struct {
		AccessKeyID     string `yaml:"access_key_id" env:"ACCESSKEYID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"SECRETACCESSKEY"`
		Region          string `yaml:"region" env:"REGION"`
		Bucket          string `yaml:"bucket" env:"BUCKET"`
	} `yaml:"s3"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"4"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"8"`
		Enabled bool    `yaml:"enabled" env:"LENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins" env:"TRUSTEDORIGINS" env-separator:" "`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username     string `yaml:"username" env:"USERNAME"`
		PasswordHash string `yaml:"password_hash" env:"PASSWORDHASH"`
	} `yaml:"basic_auth"`
}

// Decode builds the configuration from an optional .env file, an optional YAML
// file named by CONFIG_PATH (config.yml by default) and the environment.
// Environment variables take precedence over the file.
func Decode() (Config, error) {
	var cfg Config
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, &cfg)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, err
	}
	if cfg.Catalog.DefaultCoverURL == "" {
		cfg.Catalog.DefaultCoverURL = DefaultCoverURL
	}
	return cfg, nil
}
