package repository

import (
	"fmt"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo           UserRepository
	StrategyConfigRepo StrategyConfigRepository
	AnalysisRecordRepo AnalysisRecordRepository
	AccountRepo        AccountRepository
	VisionAIRepo       VisionAIRepository
	BrokerRepo         BrokerRepository
	ArtifactStore      ArtifactStore
	UnitOfWork         UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	var visionRepo VisionAIRepository
	switch cfg.AI.Provider {
	case "openai", "":
		visionRepo = NewOpenAIVisionRepository(cfg, log)
	case "gemini":
		visionRepo = NewGeminiVisionRepository(cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}

	return &Repository{
		UserRepo:           NewUserRepository(db),
		StrategyConfigRepo: NewStrategyConfigRepository(db),
		AnalysisRecordRepo: NewAnalysisRecordRepository(db),
		AccountRepo:        NewAccountRepository(db),
		VisionAIRepo:       visionRepo,
		BrokerRepo:         NewBrokerRepository(cfg, log),
		ArtifactStore:      NewFileArtifactStore(cfg.Artifact.BaseDir, log),
		UnitOfWork:         NewUnitOfWork(db),
	}, nil
}
