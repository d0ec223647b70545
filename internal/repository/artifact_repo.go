package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"github.com/google/uuid"
)

// ArtifactStore persists the analysis JSON document (and the originating
// chart image) on disk, one artifact per record. A record without its
// artifact breaks the read-back contract, so Save failures must be treated
// as hard failures by callers.
type ArtifactStore interface {
	SaveImage(ctx context.Context, userID uint, image []byte) (string, error)
	SaveAnalysis(ctx context.Context, userID uint, analysis *dto.ChartAnalysis) (string, error)
	LoadAnalysis(ctx context.Context, path string) (*dto.ChartAnalysis, error)
	Delete(ctx context.Context, path string) error
}

type fileArtifactStore struct {
	baseDir string
	logger  *logger.Logger
}

func NewFileArtifactStore(baseDir string, log *logger.Logger) ArtifactStore {
	return &fileArtifactStore{baseDir: baseDir, logger: log}
}

func (s *fileArtifactStore) userDir(userID uint) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("user_%d", userID))
}

func (s *fileArtifactStore) SaveImage(ctx context.Context, userID uint, image []byte) (string, error) {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_chart.jpg", uuid.NewString()))
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("failed to write chart image: %w", err)
	}
	return path, nil
}

func (s *fileArtifactStore) SaveAnalysis(ctx context.Context, userID uint, analysis *dto.ChartAnalysis) (string, error) {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %w", err)
	}

	content, err := json.MarshalIndent(analysis, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_analysis.json", uuid.NewString()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis artifact: %w", err)
	}
	return path, nil
}

func (s *fileArtifactStore) LoadAnalysis(ctx context.Context, path string) (*dto.ChartAnalysis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis artifact: %w", err)
	}

	var analysis dto.ChartAnalysis
	if err := json.Unmarshal(content, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis artifact: %w", err)
	}
	return &analysis, nil
}

func (s *fileArtifactStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact %s: %w", path, err)
	}
	return nil
}
