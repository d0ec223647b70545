package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStrategyConfig(t *testing.T) {
	cfg := DefaultStrategyConfig(42)

	assert.Equal(t, uint(42), cfg.UserID)
	assert.Equal(t, 75, cfg.MinScoreBuy)
	assert.True(t, cfg.RequireBullishMA)
	assert.Equal(t, 1, cfg.MaxRiskFactors)
	assert.False(t, cfg.AllowSideways)
	assert.Equal(t, 60, cfg.MinConfidence)
	assert.False(t, cfg.AllowHighVolatility)
}
