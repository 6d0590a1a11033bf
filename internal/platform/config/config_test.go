package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("FUNDGATE_ADDR", "")
	t.Setenv("FUNDGATE_SWEEP_INTERVAL", "")
	t.Setenv("FUNDGATE_AUTO_REBALANCE", "")
	t.Setenv("FUNDGATE_KAFKA_BROKERS", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.True(t, cfg.AutoRebalance)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "loan-notifications", cfg.NotificationTopic)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FUNDGATE_ADDR", ":9090")
	t.Setenv("FUNDGATE_SWEEP_INTERVAL", "15m")
	t.Setenv("FUNDGATE_AUTO_REBALANCE", "false")
	t.Setenv("FUNDGATE_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.AutoRebalance)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestFromEnvRejectsBadInterval(t *testing.T) {
	t.Setenv("FUNDGATE_SWEEP_INTERVAL", "soon")
	assert.Equal(t, time.Hour, FromEnv().SweepInterval)

	t.Setenv("FUNDGATE_SWEEP_INTERVAL", "-5m")
	assert.Equal(t, time.Hour, FromEnv().SweepInterval)
}
