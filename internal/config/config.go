// Package config loads rasterlock CLI settings from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

const (
	SealStrengthInteractive = "interactive"
	SealStrengthLong        = "long"

	// PassphraseEnv names the variable checked for a passphrase before prompting.
	PassphraseEnv = "RASTERLOCK_PASSPHRASE"
)

// Config holds the application configuration.
type Config struct {
	LogLevel string

	RSABits          int
	RSAExponent      int
	RecordIterations int

	// SealStrength selects the scrypt cost for sealed image key files.
	SealStrength string

	// Passphrase is read from PassphraseEnv and must never be logged.
	Passphrase string

	LockTimeout time.Duration
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		RSABits:          env.GetInt("RASTERLOCK_RSA_BITS", 2048),
		RSAExponent:      env.GetInt("RASTERLOCK_RSA_EXPONENT", 65537),
		RecordIterations: env.GetInt("RASTERLOCK_RECORD_ITERATIONS", 600_000),

		SealStrength: env.GetString("RASTERLOCK_SEAL_STRENGTH", SealStrengthLong),
		Passphrase:   env.GetString(PassphraseEnv, ""),

		LockTimeout: env.GetDuration("RASTERLOCK_LOCK_TIMEOUT_SECONDS", 10, time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting against the accepted ranges.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel,
			validation.Required.Error("log level is required"),
			validation.In("debug", "info", "warn", "error").Error("log level must be one of debug, info, warn, error"),
		),
		validation.Field(&c.RSABits,
			validation.Required.Error("RSA modulus size is required"),
			validation.Min(2048).Error("RSA modulus must be at least 2048 bits"),
			validation.Max(16384).Error("RSA modulus may not exceed 16384 bits"),
		),
		validation.Field(&c.RSAExponent,
			validation.Required.Error("RSA public exponent is required"),
			validation.Min(3).Error("RSA public exponent must be at least 3"),
			validation.Max(1<<31-1).Error("RSA public exponent may not exceed 2147483647"),
			validation.By(oddInt),
		),
		validation.Field(&c.RecordIterations,
			validation.Required.Error("record iterations are required"),
			validation.Min(1000).Error("record iterations must be at least 1000"),
		),
		validation.Field(&c.SealStrength,
			validation.In(SealStrengthInteractive, SealStrengthLong).Error("seal strength must be interactive or long"),
		),
		validation.Field(&c.LockTimeout,
			validation.Required.Error("lock timeout is required"),
			validation.Min(time.Duration(0)).Exclusive().Error("lock timeout must be positive"),
		),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func oddInt(value interface{}) error {
	n, ok := value.(int)
	if !ok {
		return errors.New("must be an integer")
	}
	if n%2 == 0 {
		return errors.New("RSA public exponent must be odd")
	}
	return nil
}

// loadDotEnv loads the nearest .env file, searching from the working directory up to the root.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
