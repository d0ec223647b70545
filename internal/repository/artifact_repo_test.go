package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/pkg/common"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestArtifactStore(t *testing.T) (ArtifactStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileArtifactStore(dir, &logger.Logger{Logger: zap.NewNop()}), dir
}

func TestFileArtifactStore_AnalysisRoundTrip(t *testing.T) {
	store, dir := newTestArtifactStore(t)
	ctx := context.Background()

	analysis := &dto.ChartAnalysis{
		Symbol:         "600519",
		Trend:          "Up",
		Signal:         common.SIGNAL_BUY,
		Score:          85,
		Confidence:     90,
		SupportLevels:  []float64{10.5, 10.2},
		KeyLevels:      dto.KeyLevels{ShortTermHold: 10.0, TrendInvalid: 9.5},
		RawSignal:      common.SIGNAL_BUY,
		FinalSignal:    common.SIGNAL_BUY,
		StrategyReason: "all policy thresholds satisfied",
	}

	path, err := store.SaveAnalysis(ctx, 42, analysis)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(dir, "user_42")))
	assert.True(t, strings.HasSuffix(path, "_analysis.json"))

	loaded, err := store.LoadAnalysis(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, analysis, loaded)
}

func TestFileArtifactStore_SaveImage(t *testing.T) {
	store, dir := newTestArtifactStore(t)
	ctx := context.Background()

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	path, err := store.SaveImage(ctx, 7, image)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(dir, "user_7")))
	assert.True(t, strings.HasSuffix(path, "_chart.jpg"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, image, content)
}

func TestFileArtifactStore_Delete(t *testing.T) {
	store, _ := newTestArtifactStore(t)
	ctx := context.Background()

	path, err := store.SaveImage(ctx, 1, []byte("img"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting again, or deleting nothing, is not an error.
	assert.NoError(t, store.Delete(ctx, path))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestFileArtifactStore_LoadMissing(t *testing.T) {
	store, dir := newTestArtifactStore(t)

	_, err := store.LoadAnalysis(context.Background(), filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}
