// Package strategy implements the deterministic signal-filtering engine.
// Evaluate takes a normalized chart analysis plus a user's risk policy and
// walks an ordered gate chain: each gate either rejects with a specific
// reason or hands off to the next one. The engine only ever restricts BUY
// signals, it never upgrades a SELL or WAIT.
package strategy

import (
	"fmt"
	"strings"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
)

// Evaluate applies the policy gates in order and returns the final signal
// with a human-readable reason. Pure and deterministic: no I/O, inputs are
// never mutated, identical arguments always yield identical results.
//
// Gate order matters. Gates are cheap-first and fail-fast, and two inputs
// failing different gate subsets must report the earliest failing gate so
// reasons stay stable across runs.
func Evaluate(analysis *dto.ChartAnalysis, policy model.StrategyConfig) (string, string) {
	rawSignal := normalizeSignal(analysis.Signal)

	if rawSignal != common.SIGNAL_BUY {
		return rawSignal, "AI raw signal is not BUY, strategy defers to it"
	}

	if analysis.Confidence < policy.MinConfidence {
		return common.SIGNAL_WAIT, fmt.Sprintf("confidence below threshold: %d < %d", analysis.Confidence, policy.MinConfidence)
	}

	if analysis.Score < policy.MinScoreBuy {
		return common.SIGNAL_WAIT, fmt.Sprintf("score %d below threshold %d", analysis.Score, policy.MinScoreBuy)
	}

	if policy.RequireBullishMA && !matchesCategory(analysis.MAStructure, "Bullish") {
		return common.SIGNAL_WAIT, fmt.Sprintf("policy requires bullish MA, got %s", analysis.MAStructure)
	}

	if len(analysis.RiskFactors) > policy.MaxRiskFactors {
		return common.SIGNAL_WAIT, fmt.Sprintf("risk factor count %d exceeds allowed %d", len(analysis.RiskFactors), policy.MaxRiskFactors)
	}

	if !policy.AllowSideways && (matchesCategory(analysis.Trend, "Range") || matchesCategory(analysis.Trend, "Sideways")) {
		return common.SIGNAL_WAIT, "sideways/ranging trend disallowed by policy"
	}

	if !policy.AllowHighVolatility && analysis.VolatilityStatus == "High" {
		return common.SIGNAL_WAIT, "high volatility disallowed by policy"
	}

	return common.SIGNAL_BUY, "all policy thresholds satisfied"
}

// normalizeSignal upper-cases the raw model signal, defaulting an absent
// value to WAIT so the engine never has to handle an empty verdict.
func normalizeSignal(signal string) string {
	signal = strings.ToUpper(strings.TrimSpace(signal))
	if signal == "" {
		return common.SIGNAL_WAIT
	}
	return signal
}

// matchesCategory is the single matching convention for categorical model
// output: case-sensitive substring containment. The model's vocabulary is
// not a closed enum, so compound values like "Bullish/Mixed" still satisfy
// a Bullish requirement.
func matchesCategory(value, token string) bool {
	return strings.Contains(value, token)
}
