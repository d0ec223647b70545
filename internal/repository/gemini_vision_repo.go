package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
	"github.com/yizhaofeng1/ai-trader/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiVisionRepository is the native Gemini implementation of
// VisionAIRepository, for deployments that point at Google directly instead
// of an OpenAI-compatible gateway.
type geminiVisionRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

func NewGeminiVisionRepository(cfg *config.Config, log *logger.Logger) VisionAIRepository {
	maxRequests := cfg.AI.MaxRequestPerMinute
	if maxRequests <= 0 {
		maxRequests = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequests)
	return &geminiVisionRepository{
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.AI.MaxTokenPerMinute),
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *geminiVisionRepository) AnalyzeChart(ctx context.Context, creds ProviderCredentials, image []byte) (*dto.ChartAnalysis, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: creds.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.AI.Timeout)
	defer cancel()

	instruction := systemInstruction()

	// Token counting only covers the text prompt; the image part is charged
	// separately by the provider but dominates far less than the schema text.
	countContents := []*genai.Content{
		genai.NewContentFromText(instruction, "user"),
	}
	tokenResp, err := client.Models.CountTokens(ctx, creds.Model, countContents, nil)
	if err != nil {
		return nil, wrapGeminiError(err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(analyzeUserMessage),
			genai.NewPartFromBytes(image, "image/jpeg"),
		}, "user"),
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(instruction, "user"),
	}

	resp, err := client.Models.GenerateContent(ctx, creds.Model, contents, genConfig)
	if err != nil {
		return nil, wrapGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &ProviderError{StatusCode: 200, Code: "empty_response", Message: "no content in gemini response"}
	}

	var analysis dto.ChartAnalysis
	if err := parseModelJSON(resp.Candidates[0].Content.Parts[0].Text, &analysis); err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse gemini response", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	return &analysis, nil
}

func (r *geminiVisionRepository) ListVisionModels(ctx context.Context, creds ProviderCredentials) ([]string, error) {
	return nil, ErrModelListingUnsupported
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
		}
	}
	return err
}
