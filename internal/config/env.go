package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv reads a .env file into the process environment when present.
// Variables already set are not overwritten.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// applyEnvOverrides lets PAYFLOW_* variables take precedence over the yaml.
func (c *Config) applyEnvOverrides() {
	setIfEnv(&c.HTTP.Addr, "PAYFLOW_HTTP_ADDR")
	setIfEnv(&c.Database.URL, "PAYFLOW_DATABASE_URL")
	setIfEnv(&c.Redis.URL, "PAYFLOW_REDIS_URL")
	setIfEnv(&c.Redis.Password, "PAYFLOW_REDIS_PASSWORD")
	setIntIfEnv(&c.Redis.DB, "PAYFLOW_REDIS_DB")
	setIfEnv(&c.Payflow.PublicationID, "PAYFLOW_PUBLICATION_ID")
	setIfEnv(&c.Payflow.ReturnURL, "PAYFLOW_RETURN_URL")
	setIfEnv(&c.Payflow.PayEnvironment, "PAYFLOW_PAY_ENVIRONMENT")
	setDurationIfEnv(&c.Payflow.SessionTTL, "PAYFLOW_SESSION_TTL")
	setIfEnv(&c.Log.Level, "PAYFLOW_LOG_LEVEL")
}

func setIfEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setDurationIfEnv(target *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}
