package dto

import (
	"encoding/json"
	"testing"

	"github.com/yizhaofeng1/ai-trader/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartAnalysis_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   ChartAnalysis
		want ChartAnalysis
	}{
		{
			name: "empty analysis gets WAIT everywhere",
			in:   ChartAnalysis{},
			want: ChartAnalysis{
				RawSignal:      common.SIGNAL_WAIT,
				FinalSignal:    common.SIGNAL_WAIT,
				StrategyReason: DefaultStrategyReason,
			},
		},
		{
			name: "signal is copied into raw and final when missing",
			in:   ChartAnalysis{Signal: common.SIGNAL_BUY},
			want: ChartAnalysis{
				Signal:         common.SIGNAL_BUY,
				RawSignal:      common.SIGNAL_BUY,
				FinalSignal:    common.SIGNAL_BUY,
				StrategyReason: DefaultStrategyReason,
			},
		},
		{
			name: "existing final signal is never overwritten",
			in: ChartAnalysis{
				Signal:      common.SIGNAL_BUY,
				FinalSignal: common.SIGNAL_WAIT,
			},
			want: ChartAnalysis{
				Signal:         common.SIGNAL_BUY,
				RawSignal:      common.SIGNAL_BUY,
				FinalSignal:    common.SIGNAL_WAIT,
				StrategyReason: DefaultStrategyReason,
			},
		},
		{
			name: "negative confidence is clamped to zero",
			in:   ChartAnalysis{Signal: common.SIGNAL_SELL, Confidence: -5},
			want: ChartAnalysis{
				Signal:         common.SIGNAL_SELL,
				Confidence:     0,
				RawSignal:      common.SIGNAL_SELL,
				FinalSignal:    common.SIGNAL_SELL,
				StrategyReason: DefaultStrategyReason,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.ApplyDefaults()
			assert.Equal(t, tt.want, tt.in)
		})
	}
}

// A provider payload that omits confidence and the strategy fields must still
// come out structurally complete after the defaulting pass.
func TestChartAnalysis_DefaultsAfterPartialPayload(t *testing.T) {
	raw := `{"symbol": "600519", "trend": "Up", "signal": "BUY", "score": 85}`

	var a ChartAnalysis
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	a.ApplyDefaults()

	assert.Equal(t, 0, a.Confidence)
	assert.Equal(t, common.SIGNAL_BUY, a.RawSignal)
	assert.Equal(t, common.SIGNAL_BUY, a.FinalSignal)
	assert.Equal(t, DefaultStrategyReason, a.StrategyReason)
}

func TestChartAnalysis_RecommendedLevels(t *testing.T) {
	a := ChartAnalysis{
		SupportLevels:    []float64{10.5, 10.2},
		ResistanceLevels: []float64{12.0, 12.5},
		KeyLevels:        KeyLevels{TrendInvalid: 9.5},
	}
	assert.Equal(t, 9.5, a.RecommendedStopLoss())
	assert.Equal(t, 12.0, a.RecommendedTakeProfit())

	a.KeyLevels.TrendInvalid = 0
	assert.Equal(t, 10.5, a.RecommendedStopLoss())

	empty := ChartAnalysis{}
	assert.Equal(t, 0.0, empty.RecommendedStopLoss())
	assert.Equal(t, 0.0, empty.RecommendedTakeProfit())
}
