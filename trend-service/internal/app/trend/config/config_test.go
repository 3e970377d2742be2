package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
	assert.Equal(t, 1000, cfg.Scraper.MaxProducts)
	assert.Equal(t, 10, cfg.Scraper.AutoStartThreshold)
	assert.Equal(t, 100*time.Millisecond, cfg.Scraper.StepDelay)
	assert.Equal(t, "@every 1h", cfg.Scheduler.Spec)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MAX_PRODUCTS", "250")
	t.Setenv("AUTO_START_THRESHOLD", "3")
	t.Setenv("SCRAPER_STEP_DELAY", "5ms")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Scraper.MaxProducts)
	assert.Equal(t, 3, cfg.Scraper.AutoStartThreshold)
	assert.Equal(t, 5*time.Millisecond, cfg.Scraper.StepDelay)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max products", "MAX_PRODUCTS", "many"},
		{"negative max products", "MAX_PRODUCTS", "-1"},
		{"bad duration", "SCRAPER_STEP_DELAY", "soon"},
		{"bad bool", "SCHEDULER_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "trenddrop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=trenddrop sslmode=disable", c.DSN())
}
