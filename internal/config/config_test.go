package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payreminder/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.ClaimLease)
	assert.True(t, cfg.Reconcile.SyncInstruments)
	assert.Equal(t, config.SinkPostgres, cfg.Notify.Sink)
	assert.Equal(t, "postgres://postgres:@localhost:5432/payreminder?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SCHEDULER_INTERVAL", "15m")
	t.Setenv("RECONCILE_SYNC_INSTRUMENTS", "false")
	t.Setenv("NOTIFY_SINK", "dynamo")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.False(t, cfg.Reconcile.SyncInstruments)
	assert.Equal(t, config.SinkDynamo, cfg.Notify.Sink)
	assert.Contains(t, cfg.ConnectionString(), "postgres:secret@db:5432")
}

func TestLoad_InvalidSink(t *testing.T) {
	t.Setenv("NOTIFY_SINK", "carrier-pigeon")

	_, err := config.Load()
	assert.Error(t, err)
}
