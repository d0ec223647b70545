package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// visionModelKeywords marks model ids that advertise image input. Providers
// do not expose a capability flag, naming convention is all there is.
var visionModelKeywords = []string{"vl", "vision", "gpt-4o", "omni", "gemini", "claude-3", "llava"}

// openAIVisionRepository talks to any OpenAI-compatible chat completion
// endpoint (OpenAI, DashScope, OpenRouter, vLLM). Credentials vary per user,
// so the client is built per request; the rate limiter is shared.
type openAIVisionRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewOpenAIVisionRepository(cfg *config.Config, log *logger.Logger) VisionAIRepository {
	maxRequests := cfg.AI.MaxRequestPerMinute
	if maxRequests <= 0 {
		maxRequests = 10
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequests)
	return &openAIVisionRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *openAIVisionRepository) client(creds ProviderCredentials) *openai.Client {
	clientCfg := openai.DefaultConfig(creds.APIKey)
	if creds.BaseURL != "" {
		clientCfg.BaseURL = creds.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func (r *openAIVisionRepository) AnalyzeChart(ctx context.Context, creds ProviderCredentials, image []byte) (*dto.ChartAnalysis, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for provider request limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.AI.Timeout)
	defer cancel()

	base64Image := base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionRequest{
		Model: creds.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction(),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: analyzeUserMessage,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64Image),
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	r.logger.DebugContext(ctx, "Sending chart analysis request",
		logger.StringField("model", creds.Model),
		logger.StringField("base_url", creds.BaseURL),
	)

	resp, err := r.client(creds).CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{StatusCode: 200, Code: "empty_response", Message: "no choices in completion response"}
	}

	var analysis dto.ChartAnalysis
	if err := parseModelJSON(resp.Choices[0].Message.Content, &analysis); err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse model response", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return &analysis, nil
}

func (r *openAIVisionRepository) ListVisionModels(ctx context.Context, creds ProviderCredentials) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.AI.Timeout)
	defer cancel()

	list, err := r.client(creds).ListModels(ctx)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	var visionModels []string
	var allModels []string
	for _, m := range list.Models {
		allModels = append(allModels, m.ID)
		lowered := strings.ToLower(m.ID)
		for _, keyword := range visionModelKeywords {
			if strings.Contains(lowered, keyword) {
				visionModels = append(visionModels, m.ID)
				break
			}
		}
	}

	// No recognizably named vision model: show everything rather than nothing.
	if len(visionModels) == 0 {
		visionModels = allModels
	}
	sort.Strings(visionModels)

	return visionModels, nil
}

// parseModelJSON unmarshals a model response body, tolerating the markdown
// fencing some models emit despite being told not to.
func parseModelJSON(raw string, dest interface{}) error {
	raw = strings.Trim(raw, "`json \n")
	return json.Unmarshal([]byte(raw), dest)
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprintf("%v", apiErr.Code)
		}
		return &ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
		}
	}
	return err
}
