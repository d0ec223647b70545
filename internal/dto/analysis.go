package dto

import (
	"github.com/yizhaofeng1/ai-trader/pkg/common"
)

// KeyLevels are the two price levels the model is asked to call out.
type KeyLevels struct {
	ShortTermHold float64 `json:"short_term_hold"`
	TrendInvalid  float64 `json:"trend_invalid"`
}

// ChartAnalysis is the canonical structured judgment produced by the
// normalizer and consumed by the strategy engine. Categorical fields carry
// free-text model vocabulary and are matched substring-wise downstream,
// never validated as enums at parse time.
type ChartAnalysis struct {
	Symbol            string    `json:"symbol"`
	Trend             string    `json:"trend"`
	TrendStage        string    `json:"trend_stage"`
	PrimaryPattern    string    `json:"primary_pattern"`
	MAStructure       string    `json:"ma_structure"`
	PriceMADeviation  string    `json:"price_ma_deviation"`
	VolumeState       string    `json:"volume_state"`
	VolatilityStatus  string    `json:"volatility_status"`
	SupportLevels     []float64 `json:"support_levels"`
	ResistanceLevels  []float64 `json:"resistance_levels"`
	RiskFactors       []string  `json:"risk_factors"`
	Signal            string    `json:"signal"`
	SignalApplicableTo string   `json:"signal_applicable_to,omitempty"`
	Score             int       `json:"score"`
	Confidence        int       `json:"confidence"`
	KeyLevels         KeyLevels `json:"key_levels"`
	Reason            string    `json:"reason"`

	// Injected by the normalizer and the strategy engine, never by the model.
	RawSignal      string `json:"raw_signal"`
	FinalSignal    string `json:"final_signal"`
	StrategyReason string `json:"strategy_reason"`
}

// DefaultStrategyReason is the placeholder before the engine has run.
const DefaultStrategyReason = "AI raw analysis (unfiltered)"

// ApplyDefaults guarantees the fields downstream consumers index
// unconditionally are present, even when the provider omitted them. Safe to
// call on every normalizer path, live or not.
func (a *ChartAnalysis) ApplyDefaults() {
	signal := a.Signal
	if signal == "" {
		signal = common.SIGNAL_WAIT
	}
	if a.FinalSignal == "" {
		a.FinalSignal = signal
	}
	if a.RawSignal == "" {
		a.RawSignal = signal
	}
	if a.StrategyReason == "" {
		a.StrategyReason = DefaultStrategyReason
	}
	if a.Confidence < 0 {
		a.Confidence = 0
	}
}

// RecommendedStopLoss derives a stop-loss suggestion for the order ticket:
// the trend invalidation level when present, otherwise the nearest support.
func (a *ChartAnalysis) RecommendedStopLoss() float64 {
	if a.KeyLevels.TrendInvalid > 0 {
		return a.KeyLevels.TrendInvalid
	}
	if len(a.SupportLevels) > 0 {
		return a.SupportLevels[0]
	}
	return 0
}

// RecommendedTakeProfit derives a take-profit suggestion from the nearest
// resistance.
func (a *ChartAnalysis) RecommendedTakeProfit() float64 {
	if len(a.ResistanceLevels) > 0 {
		return a.ResistanceLevels[0]
	}
	return 0
}

// AnalysisSource tags which normalizer path produced the analysis, so callers
// branch on an explicit tag instead of catching faults.
type AnalysisSource string

const (
	SourceLive  AnalysisSource = "live"
	SourceMock  AnalysisSource = "mock"
	SourceError AnalysisSource = "error"
)

// AnalysisResult is the full normalizer output.
type AnalysisResult struct {
	Analysis ChartAnalysis  `json:"analysis"`
	Source   AnalysisSource `json:"source"`
}
