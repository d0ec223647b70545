package repository

import (
	"context"

	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StrategyConfigRepository is the policy store. The strategy engine itself
// never touches it, policies are read here and passed in explicitly.
type StrategyConfigRepository interface {
	// GetByUserID returns the user's saved policy, or the defaults when the
	// user has never configured one.
	GetByUserID(ctx context.Context, userID uint) (model.StrategyConfig, error)
	Upsert(ctx context.Context, cfg *model.StrategyConfig, opts ...utils.DBOption) error
}

type strategyConfigRepository struct {
	db *gorm.DB
}

func NewStrategyConfigRepository(db *gorm.DB) StrategyConfigRepository {
	return &strategyConfigRepository{db: db}
}

func (r *strategyConfigRepository) GetByUserID(ctx context.Context, userID uint) (model.StrategyConfig, error) {
	var cfg model.StrategyConfig
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return model.DefaultStrategyConfig(userID), nil
		}
		return model.StrategyConfig{}, result.Error
	}
	return cfg, nil
}

func (r *strategyConfigRepository) Upsert(ctx context.Context, cfg *model.StrategyConfig, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_score_buy",
			"require_bullish_ma",
			"max_risk_factors",
			"allow_sideways",
			"min_confidence",
			"allow_high_volatility",
			"updated_at",
		}),
	}).Create(cfg).Error
}
