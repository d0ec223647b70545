package model

import (
	"time"

	"github.com/creasty/defaults"
)

// StrategyConfig is the per-user risk policy applied by the strategy engine.
// One row per user, created with defaults at account creation and mutated
// only through explicit configuration updates.
type StrategyConfig struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	MinScoreBuy         int  `gorm:"not null;default:75" default:"75" json:"min_score_buy"`
	RequireBullishMA    bool `gorm:"not null;default:true" default:"true" json:"require_bullish_ma"`
	MaxRiskFactors      int  `gorm:"not null;default:1" default:"1" json:"max_risk_factors"`
	AllowSideways       bool `gorm:"not null;default:false" default:"false" json:"allow_sideways"`
	MinConfidence       int  `gorm:"not null;default:60" default:"60" json:"min_confidence"`
	AllowHighVolatility bool `gorm:"not null;default:false" default:"false" json:"allow_high_volatility"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StrategyConfig) TableName() string {
	return "strategy_configs"
}

// DefaultStrategyConfig returns the policy applied to users that have never
// saved their own. The defaults lean conservative: 60 min confidence blocks
// guesses from unreadable charts without rejecting slightly noisy ones, and
// high volatility is opted into, not out of.
func DefaultStrategyConfig(userID uint) StrategyConfig {
	cfg := StrategyConfig{UserID: userID}
	if err := defaults.Set(&cfg); err != nil {
		// Tags are static, Set can only fail on a non-pointer.
		panic(err)
	}
	return cfg
}
