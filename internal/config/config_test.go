package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Port:       "8458",
		DBPassword: "password",
		DBSSLMode:  "disable",
		MediaDir:   "media",
		Env:        "development",
		Debug:      true,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, baseConfig().Validate())

	t.Run("port required", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("media dir required", func(t *testing.T) {
		cfg := baseConfig()
		cfg.MediaDir = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestConfigValidateProduction(t *testing.T) {
	production := func() *Config {
		cfg := baseConfig()
		cfg.Env = "production"
		cfg.Debug = false
		cfg.DBPassword = "s3cr3t-senha-forte"
		cfg.DBSSLMode = "require"
		return cfg
	}

	assert.NoError(t, production().Validate())

	t.Run("debug must be off", func(t *testing.T) {
		cfg := production()
		cfg.Debug = true
		assert.Error(t, cfg.Validate())
	})

	t.Run("default db password rejected", func(t *testing.T) {
		cfg := production()
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})

	t.Run("prod alias is also strict", func(t *testing.T) {
		cfg := production()
		cfg.Env = "prod"
		cfg.Debug = true
		assert.Error(t, cfg.Validate())
	})
}
