package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/tabletap_test")

	config, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "http://localhost:8080", config.BaseURL)
	assert.Equal(t, "Asia/Kolkata", config.RestaurantTimezone)
	assert.True(t, config.IsTest())
	assert.False(t, config.IsProduction())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateRejectsBogusTimezone(t *testing.T) {
	config := &Config{
		DatabaseURL:        "postgres://localhost/tabletap_test",
		RestaurantTimezone: "Mars/Olympus_Mons",
	}

	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESTAURANT_TIMEZONE")
}

func TestLocation(t *testing.T) {
	config := &Config{RestaurantTimezone: "Asia/Kolkata"}
	loc := config.Location()
	assert.Equal(t, "Asia/Kolkata", loc.String())

	// An unloadable zone falls back to UTC rather than crashing timestamping
	config = &Config{RestaurantTimezone: "Nowhere/Invalid"}
	assert.Equal(t, time.UTC, config.Location())
}

func TestSetAndGetConfig(t *testing.T) {
	original := GetConfig()
	t.Cleanup(func() { SetConfig(original) })

	config := &Config{Port: "9090"}
	SetConfig(config)
	assert.Same(t, config, GetConfig())
}
