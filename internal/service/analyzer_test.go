package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/model"
	"github.com/yizhaofeng1/ai-trader/internal/repository"
	"github.com/yizhaofeng1/ai-trader/pkg/cache"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
	"github.com/yizhaofeng1/ai-trader/pkg/telegram"
	"github.com/yizhaofeng1/ai-trader/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVisionRepo struct {
	analysis *dto.ChartAnalysis
	err      error
	calls    int
}

func (f *fakeVisionRepo) AnalyzeChart(ctx context.Context, creds repository.ProviderCredentials, image []byte) (*dto.ChartAnalysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.analysis
	return &out, nil
}

func (f *fakeVisionRepo) ListVisionModels(ctx context.Context, creds repository.ProviderCredentials) ([]string, error) {
	return nil, repository.ErrModelListingUnsupported
}

type fakeUserRepo struct {
	user *model.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	return f.user, nil
}
func (f *fakeUserRepo) Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	return nil
}
func (f *fakeUserRepo) UpdateAISettings(ctx context.Context, userID uint, apiKey, baseURL, aiModel string, opts ...utils.DBOption) error {
	return nil
}

type fakeStrategyConfigRepo struct {
	cfg model.StrategyConfig
}

func (f *fakeStrategyConfigRepo) GetByUserID(ctx context.Context, userID uint) (model.StrategyConfig, error) {
	return f.cfg, nil
}
func (f *fakeStrategyConfigRepo) Upsert(ctx context.Context, cfg *model.StrategyConfig, opts ...utils.DBOption) error {
	return nil
}

type fakeRecordRepo struct {
	records map[uint]*model.AnalysisRecord
	nextID  uint
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uint]*model.AnalysisRecord{}, nextID: 1}
}

func (f *fakeRecordRepo) Create(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error {
	record.ID = f.nextID
	f.nextID++
	f.records[record.ID] = record
	return nil
}
func (f *fakeRecordRepo) Update(ctx context.Context, record *model.AnalysisRecord, opts ...utils.DBOption) error {
	f.records[record.ID] = record
	return nil
}
func (f *fakeRecordRepo) GetByID(ctx context.Context, id uint, userID uint) (*model.AnalysisRecord, error) {
	record, ok := f.records[id]
	if !ok || record.UserID != userID {
		return nil, nil
	}
	return record, nil
}
func (f *fakeRecordRepo) GetHistory(ctx context.Context, userID uint, limit int) ([]model.AnalysisRecord, error) {
	var out []model.AnalysisRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (f *fakeRecordRepo) Delete(ctx context.Context, id uint, userID uint) error {
	delete(f.records, id)
	return nil
}
func (f *fakeRecordRepo) FindOlderThan(ctx context.Context, date time.Time) ([]model.AnalysisRecord, error) {
	return nil, nil
}
func (f *fakeRecordRepo) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

func newTestAnalyzer(t *testing.T, vision repository.VisionAIRepository, user *model.User) (AnalyzerService, *fakeRecordRepo) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Cache.DefaultExpiration = time.Minute
	log := &logger.Logger{Logger: zap.NewNop()}

	notifier, err := telegram.NewNotifier(&cfg.Telegram, log)
	require.NoError(t, err)

	recordRepo := newFakeRecordRepo()
	repo := &repository.Repository{
		UserRepo:           &fakeUserRepo{user: user},
		StrategyConfigRepo: &fakeStrategyConfigRepo{cfg: model.DefaultStrategyConfig(1)},
		AnalysisRecordRepo: recordRepo,
		VisionAIRepo:       vision,
		ArtifactStore:      repository.NewFileArtifactStore(t.TempDir(), log),
		UnitOfWork:         fakeUnitOfWork{},
	}

	svc := NewAnalyzerService(cfg, log, repo, cache.NewCache(time.Minute, time.Minute), notifier)
	return svc, recordRepo
}

func configuredUser() *model.User {
	return &model.User{ID: 1, Username: "trader", APIKey: "sk-test", AIModel: "gpt-4o"}
}

func TestAnalyze_LiveProvider(t *testing.T) {
	vision := &fakeVisionRepo{analysis: &dto.ChartAnalysis{
		Symbol:           "600519",
		Trend:            "Up",
		MAStructure:      "Bullish",
		VolatilityStatus: "Normal",
		Signal:           common.SIGNAL_BUY,
		Score:            85,
		Confidence:       90,
	}}
	svc, recordRepo := newTestAnalyzer(t, vision, configuredUser())

	record, result, err := svc.Analyze(context.Background(), 1, []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, dto.SourceLive, result.Source)
	assert.Equal(t, common.SIGNAL_BUY, result.Analysis.RawSignal)
	assert.Equal(t, common.SIGNAL_BUY, result.Analysis.FinalSignal)
	assert.Equal(t, "all policy thresholds satisfied", result.Analysis.StrategyReason)
	assert.Equal(t, 1, vision.calls)

	stored := recordRepo.records[record.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "600519", stored.Symbol)
	assert.NotEmpty(t, stored.ArtifactPath)
	assert.NotEmpty(t, stored.ImagePath)
	assert.NotEmpty(t, stored.AIResult)
}

func TestAnalyze_NoCredentialsUsesMock(t *testing.T) {
	vision := &fakeVisionRepo{analysis: &dto.ChartAnalysis{}}
	svc, _ := newTestAnalyzer(t, vision, &model.User{ID: 1, Username: "trader"})

	_, result, err := svc.Analyze(context.Background(), 1, []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, dto.SourceMock, result.Source)
	assert.Equal(t, "MOCK-TEST", result.Analysis.Symbol)
	assert.Equal(t, 0, vision.calls)
	assert.NotEmpty(t, result.Analysis.FinalSignal)
	assert.NotEmpty(t, result.Analysis.StrategyReason)
}

func TestAnalyze_ImageRejectionFallsBackToMock(t *testing.T) {
	vision := &fakeVisionRepo{err: &repository.ProviderError{
		StatusCode: http.StatusBadRequest,
		Code:       "invalid_image_format",
	}}
	svc, _ := newTestAnalyzer(t, vision, configuredUser())

	_, result, err := svc.Analyze(context.Background(), 1, []byte("not an image"))
	require.NoError(t, err)

	assert.Equal(t, dto.SourceMock, result.Source)
	assert.Equal(t, "MOCK-TEST", result.Analysis.Symbol)
	assert.Equal(t, 1, vision.calls)
}

func TestAnalyze_ProviderFailureYieldsErrorAnalysis(t *testing.T) {
	vision := &fakeVisionRepo{err: &repository.ProviderError{
		StatusCode: http.StatusInternalServerError,
		Message:    "upstream overloaded",
	}}
	svc, recordRepo := newTestAnalyzer(t, vision, configuredUser())

	record, result, err := svc.Analyze(context.Background(), 1, []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, dto.SourceError, result.Source)
	assert.Equal(t, common.SIGNAL_ERROR, result.Analysis.RawSignal)
	assert.Equal(t, common.SIGNAL_ERROR, result.Analysis.FinalSignal)
	assert.Contains(t, result.Analysis.Reason, "upstream overloaded")

	// The error outcome is still persisted like any other analysis.
	stored := recordRepo.records[record.ID]
	require.NotNil(t, stored)
	assert.Equal(t, string(dto.SourceError), stored.Source)
}

func TestGetAnalysis_ReadBack(t *testing.T) {
	vision := &fakeVisionRepo{analysis: &dto.ChartAnalysis{
		Symbol:     "600519",
		Signal:     common.SIGNAL_SELL,
		Confidence: 70,
	}}
	svc, _ := newTestAnalyzer(t, vision, configuredUser())

	record, _, err := svc.Analyze(context.Background(), 1, []byte("img"))
	require.NoError(t, err)

	got, analysis, err := svc.GetAnalysis(context.Background(), 1, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, analysis)
	assert.Equal(t, "600519", analysis.Symbol)
	assert.Equal(t, common.SIGNAL_SELL, analysis.RawSignal)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	svc, _ := newTestAnalyzer(t, &fakeVisionRepo{analysis: &dto.ChartAnalysis{}}, configuredUser())

	record, analysis, err := svc.GetAnalysis(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Nil(t, analysis)
}
