package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaultsFillsLifecycleTunables(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, 24, cfg.Lifecycle.PenaltyWindowHours)
	assert.Equal(t, 72, cfg.Lifecycle.AutoCompleteGraceHours)
	assert.Equal(t, 14, cfg.Lifecycle.ReviewWindowDays)
	assert.Equal(t, 5, cfg.Lifecycle.RapidChangeWindowMinutes)
	assert.Equal(t, 3, cfg.Lifecycle.RapidChangeCount)
	assert.Equal(t, 3, cfg.Lifecycle.NoShowClaimThreshold)
	assert.Equal(t, 30, cfg.Lifecycle.NoShowClaimWindowDays)
	assert.Equal(t, 30, cfg.Lifecycle.CancellationWindowDays)
	assert.Equal(t, 3, cfg.Lifecycle.CancellationLimit)
	assert.Equal(t, 30, cfg.Lifecycle.ReviewAnomalyWindowDays)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Lifecycle.CancellationLimit = 7
	cfg.Lifecycle.ReviewAnomalyWindowDays = 60
	cfg.applyDefaults()

	assert.Equal(t, 7, cfg.Lifecycle.CancellationLimit)
	assert.Equal(t, 60, cfg.Lifecycle.ReviewAnomalyWindowDays)
}
