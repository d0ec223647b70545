package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/pkg/cache"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
)

// SettingsService manages per-user AI provider settings, vision model
// discovery against the user's own endpoint, and the strategy policy.
type SettingsService interface {
	UpdateAISettings(ctx context.Context, req dto.UpdateAISettingsRequest) error
	ListVisionModels(ctx context.Context, userID uint) ([]string, error)
	GetStrategyConfig(ctx context.Context, userID uint) (model.StrategyConfig, error)
	UpdateStrategyConfig(ctx context.Context, req dto.UpdateStrategyConfigRequest) (model.StrategyConfig, error)
}

type settingsService struct {
	cfg                *config.Config
	log                *logger.Logger
	userRepo           repository.UserRepository
	strategyConfigRepo repository.StrategyConfigRepository
	visionRepo         repository.VisionAIRepository
	inmemoryCache      cache.Cache
}

func NewSettingsService(cfg *config.Config, log *logger.Logger, repo *repository.Repository, inmemoryCache cache.Cache) SettingsService {
	return &settingsService{
		cfg:                cfg,
		log:                log,
		userRepo:           repo.UserRepo,
		strategyConfigRepo: repo.StrategyConfigRepo,
		visionRepo:         repo.VisionAIRepo,
		inmemoryCache:      inmemoryCache,
	}
}

func (s *settingsService) UpdateAISettings(ctx context.Context, req dto.UpdateAISettingsRequest) error {
	if err := s.userRepo.UpdateAISettings(ctx, req.UserID, req.APIKey, req.APIBaseURL, req.AIModel); err != nil {
		return fmt.Errorf("failed to update AI settings: %w", err)
	}

	// Endpoint may have changed, the cached model list is stale.
	s.inmemoryCache.Delete(fmt.Sprintf(common.KEY_VISION_MODELS, s.modelCacheKey(req.UserID)))
	return nil
}

// ListVisionModels queries /models on the user's configured endpoint and
// filters for vision-capable entries. Providers without a model listing API
// surface an empty list rather than an error.
func (s *settingsService) ListVisionModels(ctx context.Context, userID uint) ([]string, error) {
	key := fmt.Sprintf(common.KEY_VISION_MODELS, s.modelCacheKey(userID))
	if cached, ok := cache.GetTyped[[]string](s.inmemoryCache, key); ok {
		return cached, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	creds := repository.ProviderCredentials{
		APIKey:  s.cfg.AI.APIKey,
		BaseURL: s.cfg.AI.BaseURL,
		Model:   s.cfg.AI.Model,
	}
	if user != nil && user.HasProviderConfig() {
		creds.APIKey = user.APIKey
		if user.APIBaseURL != "" {
			creds.BaseURL = user.APIBaseURL
		}
	}
	if creds.APIKey == "" {
		return []string{}, nil
	}

	models, err := s.visionRepo.ListVisionModels(ctx, creds)
	if err != nil {
		if errors.Is(err, repository.ErrModelListingUnsupported) {
			return []string{}, nil
		}
		s.log.WarnContext(ctx, "Failed to list vision models", logger.ErrorField(err))
		return nil, err
	}

	s.inmemoryCache.Set(key, models, s.cfg.Cache.DefaultExpiration)
	return models, nil
}

func (s *settingsService) modelCacheKey(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

func (s *settingsService) GetStrategyConfig(ctx context.Context, userID uint) (model.StrategyConfig, error) {
	return s.strategyConfigRepo.GetByUserID(ctx, userID)
}

func (s *settingsService) UpdateStrategyConfig(ctx context.Context, req dto.UpdateStrategyConfigRequest) (model.StrategyConfig, error) {
	cfg := model.StrategyConfig{
		UserID:              req.UserID,
		MinScoreBuy:         req.MinScoreBuy,
		RequireBullishMA:    *req.RequireBullishMA,
		MaxRiskFactors:      req.MaxRiskFactors,
		AllowSideways:       *req.AllowSideways,
		MinConfidence:       req.MinConfidence,
		AllowHighVolatility: *req.AllowHighVolatility,
	}
	if err := s.strategyConfigRepo.Upsert(ctx, &cfg); err != nil {
		return model.StrategyConfig{}, fmt.Errorf("failed to save strategy config: %w", err)
	}
	return cfg, nil
}
