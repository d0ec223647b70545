package service

import (
	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/pkg/cache"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
	"github.com/yizhaofeng1/ai-trader/pkg/telegram"
)

type Service struct {
	AnalyzerService  AnalyzerService
	OrderService     OrderService
	SettingsService  SettingsService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) *Service {
	return &Service{
		AnalyzerService:  NewAnalyzerService(cfg, log, repo, inmemoryCache, notifier),
		OrderService:     NewOrderService(cfg, log, repo),
		SettingsService:  NewSettingsService(cfg, log, repo, inmemoryCache),
		SchedulerService: NewSchedulerService(cfg, log, repo),
	}
}
