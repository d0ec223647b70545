package strategy

import (
	"testing"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/pkg/common"

	"github.com/stretchr/testify/assert"
)

func passingAnalysis() dto.ChartAnalysis {
	return dto.ChartAnalysis{
		Symbol:           "600519",
		Trend:            "Up",
		MAStructure:      "Bullish",
		VolatilityStatus: "Normal",
		RiskFactors:      []string{},
		Signal:           common.SIGNAL_BUY,
		Score:            80,
		Confidence:       90,
	}
}

func TestEvaluate(t *testing.T) {
	defaultPolicy := model.DefaultStrategyConfig(1)

	tests := []struct {
		name       string
		analysis   dto.ChartAnalysis
		policy     model.StrategyConfig
		wantSignal string
		wantReason string
	}{
		{
			name: "non BUY signal passes through unchanged",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Signal = common.SIGNAL_WAIT
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "AI raw signal is not BUY, strategy defers to it",
		},
		{
			name: "SELL passes through even with perfect metrics",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Signal = common.SIGNAL_SELL
				a.Score = 100
				a.Confidence = 100
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_SELL,
			wantReason: "AI raw signal is not BUY, strategy defers to it",
		},
		{
			name: "low confidence downgrades to WAIT",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Confidence = 50
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "confidence below threshold: 50 < 60",
		},
		{
			name: "low score downgrades to WAIT",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Score = 70
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "score 70 below threshold 75",
		},
		{
			name: "non bullish MA structure downgrades to WAIT",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.MAStructure = "Mixed"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "policy requires bullish MA, got Mixed",
		},
		{
			name: "compound MA value containing Bullish passes",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.MAStructure = "Bullish/Mixed"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_BUY,
			wantReason: "all policy thresholds satisfied",
		},
		{
			name: "too many risk factors downgrades to WAIT",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.RiskFactors = []string{"divergence", "low volume"}
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "risk factor count 2 exceeds allowed 1",
		},
		{
			name: "sideways trend disallowed by default policy",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Trend = "Sideways"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "sideways/ranging trend disallowed by policy",
		},
		{
			name: "ranging trend disallowed by default policy",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Trend = "Range-bound"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "sideways/ranging trend disallowed by policy",
		},
		{
			name: "sideways trend allowed when policy opts in",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Trend = "Sideways"
				return a
			}(),
			policy: func() model.StrategyConfig {
				p := model.DefaultStrategyConfig(1)
				p.AllowSideways = true
				return p
			}(),
			wantSignal: common.SIGNAL_BUY,
			wantReason: "all policy thresholds satisfied",
		},
		{
			name: "high volatility disallowed by default policy",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.VolatilityStatus = "High"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "high volatility disallowed by policy",
		},
		{
			name: "high volatility allowed when policy opts in",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.VolatilityStatus = "High"
				return a
			}(),
			policy: func() model.StrategyConfig {
				p := model.DefaultStrategyConfig(1)
				p.AllowHighVolatility = true
				return p
			}(),
			wantSignal: common.SIGNAL_BUY,
			wantReason: "all policy thresholds satisfied",
		},
		{
			name:       "clean BUY passes every gate",
			analysis:   passingAnalysis(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_BUY,
			wantReason: "all policy thresholds satisfied",
		},
		{
			name: "empty signal treated as WAIT",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Signal = ""
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_WAIT,
			wantReason: "AI raw signal is not BUY, strategy defers to it",
		},
		{
			name: "lowercase buy is normalized before gating",
			analysis: func() dto.ChartAnalysis {
				a := passingAnalysis()
				a.Signal = "buy"
				return a
			}(),
			policy:     defaultPolicy,
			wantSignal: common.SIGNAL_BUY,
			wantReason: "all policy thresholds satisfied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSignal, gotReason := Evaluate(&tt.analysis, tt.policy)
			assert.Equal(t, tt.wantSignal, gotSignal)
			assert.Equal(t, tt.wantReason, gotReason)
		})
	}
}

// The confidence gate fires before the score gate, so an analysis failing
// both reports the confidence reason.
func TestEvaluate_GateOrder(t *testing.T) {
	a := passingAnalysis()
	a.Confidence = 10
	a.Score = 10
	a.MAStructure = "Bearish"

	signal, reason := Evaluate(&a, model.DefaultStrategyConfig(1))
	assert.Equal(t, common.SIGNAL_WAIT, signal)
	assert.Equal(t, "confidence below threshold: 10 < 60", reason)
}

func TestEvaluate_Deterministic(t *testing.T) {
	a := passingAnalysis()
	policy := model.DefaultStrategyConfig(1)

	firstSignal, firstReason := Evaluate(&a, policy)
	for i := 0; i < 10; i++ {
		signal, reason := Evaluate(&a, policy)
		assert.Equal(t, firstSignal, signal)
		assert.Equal(t, firstReason, reason)
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	a := passingAnalysis()
	before := a

	Evaluate(&a, model.DefaultStrategyConfig(1))
	assert.Equal(t, before, a)
}
