package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/internal/strategy"
	"github.com/yizhaofeng1/ai-trader/pkg/cache"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
	"github.com/yizhaofeng1/ai-trader/pkg/telegram"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"

	"gorm.io/datatypes"
)

// AnalyzerService is the analysis normalizer: it turns a chart image into a
// structurally complete ChartAnalysis, runs the strategy engine over it and
// persists the record together with its JSON artifact.
type AnalyzerService interface {
	Analyze(ctx context.Context, userID uint, image []byte) (*model.AnalysisRecord, *dto.AnalysisResult, error)
	GetAnalysis(ctx context.Context, userID uint, recordID uint) (*model.AnalysisRecord, *dto.ChartAnalysis, error)
	GetHistory(ctx context.Context, userID uint, limit int) ([]model.AnalysisRecord, error)
	DeleteRecord(ctx context.Context, userID uint, recordID uint) error
}

type analyzerService struct {
	cfg                *config.Config
	log                *logger.Logger
	visionRepo         repository.VisionAIRepository
	userRepo           repository.UserRepository
	strategyConfigRepo repository.StrategyConfigRepository
	recordRepo         repository.AnalysisRecordRepository
	artifactStore      repository.ArtifactStore
	uow                repository.UnitOfWork
	inmemoryCache      cache.Cache
	notifier           *telegram.Notifier
}

func NewAnalyzerService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier *telegram.Notifier,
) AnalyzerService {
	return &analyzerService{
		cfg:                cfg,
		log:                log,
		visionRepo:         repo.VisionAIRepo,
		userRepo:           repo.UserRepo,
		strategyConfigRepo: repo.StrategyConfigRepo,
		recordRepo:         repo.AnalysisRecordRepo,
		artifactStore:      repo.ArtifactStore,
		uow:                repo.UnitOfWork,
		inmemoryCache:      inmemoryCache,
		notifier:           notifier,
	}
}

func (s *analyzerService) Analyze(ctx context.Context, userID uint, image []byte) (*model.AnalysisRecord, *dto.AnalysisResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	creds, configured := s.resolveCredentials(user)
	result := s.normalize(ctx, creds, configured, image)

	policy, err := s.strategyConfigRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load strategy config: %w", err)
	}

	finalSignal, reason := strategy.Evaluate(&result.Analysis, policy)
	result.Analysis.FinalSignal = finalSignal
	result.Analysis.StrategyReason = reason

	record, err := s.persist(ctx, userID, image, result)
	if err != nil {
		return nil, nil, err
	}

	s.inmemoryCache.Set(fmt.Sprintf(common.KEY_ANALYSIS_RESULT, record.ID), result.Analysis, s.cfg.Cache.DefaultExpiration)

	if s.notifier.Enabled() {
		analysis := result.Analysis
		utils.GoSafe(func() {
			s.notifier.NotifySignal(analysis.Symbol, analysis.RawSignal, analysis.FinalSignal, analysis.StrategyReason)
		})
	}

	return record, result, nil
}

// resolveCredentials prefers the user's own provider settings and falls back
// to the global configuration. The second return value is false when neither
// is configured, which selects the mock path.
func (s *analyzerService) resolveCredentials(user *model.User) (repository.ProviderCredentials, bool) {
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
		if user.AIModel != "" {
			creds.Model = user.AIModel
		}
	}

	return creds, creds.APIKey != ""
}

// normalize produces a structurally complete analysis on every path. It
// never returns an error: provider failures become either a mock analysis
// (image rejected, or nothing configured) or an explicit ERROR analysis.
func (s *analyzerService) normalize(ctx context.Context, creds repository.ProviderCredentials, configured bool, image []byte) *dto.AnalysisResult {
	if !configured {
		s.log.InfoContext(ctx, "No AI credentials configured, using mock analysis")
		return s.mockResult()
	}

	analysis, err := s.visionRepo.AnalyzeChart(ctx, creds, image)
	if err != nil {
		if repository.IsImageRejection(err) {
			s.log.WarnContext(ctx, "Provider rejected image, falling back to mock analysis", logger.ErrorField(err))
			return s.mockResult()
		}

		s.log.ErrorContextWithAlert(ctx, "AI provider call failed", logger.ErrorField(err))
		return s.errorResult(err)
	}

	analysis.ApplyDefaults()
	return &dto.AnalysisResult{Analysis: *analysis, Source: dto.SourceLive}
}

// mockResult builds the synthetic analysis used when no live provider is
// reachable, so the full pipeline stays exercisable without credentials.
func (s *analyzerService) mockResult() *dto.AnalysisResult {
	trend := []string{"Upward", "Downward", "Sideways"}[rand.Intn(3)]

	signal := common.SIGNAL_HOLD
	score := 40 + rand.Intn(21)
	switch {
	case strings.Contains(trend, "Up"):
		signal = common.SIGNAL_BUY
		score = 80 + rand.Intn(16)
	case strings.Contains(trend, "Down"):
		signal = common.SIGNAL_SELL
	}

	analysis := dto.ChartAnalysis{
		Symbol:           "MOCK-TEST",
		Trend:            trend,
		TrendStage:       "Early",
		PrimaryPattern:   "Double Bottom",
		MAStructure:      "Bullish",
		PriceMADeviation: "Low",
		VolumeState:      "Expanding",
		VolatilityStatus: "Normal",
		SupportLevels:    []float64{10.5, 10.2},
		ResistanceLevels: []float64{12.0, 12.5},
		RiskFactors:      []string{},
		Signal:           signal,
		Score:            score,
		Confidence:       92,
		KeyLevels:        dto.KeyLevels{ShortTermHold: 10.0, TrendInvalid: 9.5},
		Reason:           "Simulated output: no live AI provider was reachable, this analysis is for demonstration only.",
	}
	analysis.ApplyDefaults()

	return &dto.AnalysisResult{Analysis: analysis, Source: dto.SourceMock}
}

// errorResult builds the terminal ERROR analysis: a genuine provider failure
// the user should see, as opposed to "no credentials configured".
func (s *analyzerService) errorResult(err error) *dto.AnalysisResult {
	analysis := dto.ChartAnalysis{
		Symbol: "Unknown",
		Signal: common.SIGNAL_ERROR,
		Reason: fmt.Sprintf("AI provider call failed: %v", err),
	}
	analysis.ApplyDefaults()

	return &dto.AnalysisResult{Analysis: analysis, Source: dto.SourceError}
}

// persist writes the record and its artifact as one logical unit. The
// artifact write happens inside the transaction so a failed write rolls the
// record back instead of leaving one without its artifact.
func (s *analyzerService) persist(ctx context.Context, userID uint, image []byte, result *dto.AnalysisResult) (*model.AnalysisRecord, error) {
	imagePath, err := s.artifactStore.SaveImage(ctx, userID, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store chart image: %w", err)
	}

	aiResult, err := json.Marshal(result.Analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	record := &model.AnalysisRecord{
		UserID:         userID,
		Symbol:         result.Analysis.Symbol,
		ImagePath:      imagePath,
		AIResult:       datatypes.JSON(aiResult),
		Source:         string(result.Source),
		RawSignal:      result.Analysis.RawSignal,
		FinalSignal:    result.Analysis.FinalSignal,
		StrategyReason: result.Analysis.StrategyReason,
	}

	err = s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.recordRepo.Create(ctx, record, opts...); err != nil {
			return fmt.Errorf("failed to create analysis record: %w", err)
		}

		artifactPath, err := s.artifactStore.SaveAnalysis(ctx, userID, &result.Analysis)
		if err != nil {
			return fmt.Errorf("failed to write analysis artifact: %w", err)
		}

		record.ArtifactPath = artifactPath
		if err := s.recordRepo.Update(ctx, record, opts...); err != nil {
			return fmt.Errorf("failed to attach artifact to record: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to persist analysis", logger.ErrorField(err), logger.IntField("user_id", int(userID)))
		return nil, err
	}

	return record, nil
}

func (s *analyzerService) GetAnalysis(ctx context.Context, userID uint, recordID uint) (*model.AnalysisRecord, *dto.ChartAnalysis, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID, userID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, nil
	}

	key := fmt.Sprintf(common.KEY_ANALYSIS_RESULT, record.ID)
	if cached, ok := cache.GetTyped[dto.ChartAnalysis](s.inmemoryCache, key); ok {
		return record, &cached, nil
	}

	// Artifact file first, database copy as fallback, neither means the
	// record exists but carries no analysis.
	if record.ArtifactPath != "" {
		if analysis, err := s.artifactStore.LoadAnalysis(ctx, record.ArtifactPath); err == nil {
			s.inmemoryCache.Set(key, *analysis, s.cfg.Cache.DefaultExpiration)
			return record, analysis, nil
		} else {
			s.log.WarnContext(ctx, "Failed to read analysis artifact, falling back to database copy",
				logger.ErrorField(err),
				logger.IntField("record_id", int(record.ID)),
			)
		}
	}

	if len(record.AIResult) > 0 {
		var analysis dto.ChartAnalysis
		if err := json.Unmarshal(record.AIResult, &analysis); err == nil {
			return record, &analysis, nil
		}
	}

	return record, nil, nil
}

func (s *analyzerService) GetHistory(ctx context.Context, userID uint, limit int) ([]model.AnalysisRecord, error) {
	return s.recordRepo.GetHistory(ctx, userID, limit)
}

func (s *analyzerService) DeleteRecord(ctx context.Context, userID uint, recordID uint) error {
	record, err := s.recordRepo.GetByID(ctx, recordID, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	if err := s.recordRepo.Delete(ctx, recordID, userID); err != nil {
		return err
	}

	s.inmemoryCache.Delete(fmt.Sprintf(common.KEY_ANALYSIS_RESULT, recordID))

	if err := s.artifactStore.Delete(ctx, record.ArtifactPath); err != nil {
		s.log.WarnContext(ctx, "Failed to delete analysis artifact", logger.ErrorField(err))
	}
	if err := s.artifactStore.Delete(ctx, record.ImagePath); err != nil {
		s.log.WarnContext(ctx, "Failed to delete chart image", logger.ErrorField(err))
	}
	return nil
}
