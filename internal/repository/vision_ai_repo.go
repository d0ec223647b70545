package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
)

// ProviderCredentials resolves where one analysis request goes: the user's
// own key and endpoint when set, otherwise the global configuration.
type ProviderCredentials struct {
	APIKey  string
	BaseURL string
	Model   string
}

// VisionAIRepository is the boundary to a vision-capable model provider.
type VisionAIRepository interface {
	// AnalyzeChart sends a chart image with the fixed system instruction and
	// returns the parsed model judgment. The returned analysis has NOT been
	// through the defaulting pass, that is the caller's job.
	AnalyzeChart(ctx context.Context, creds ProviderCredentials, image []byte) (*dto.ChartAnalysis, error)

	// ListVisionModels returns the model ids the provider exposes that look
	// vision-capable. Providers without a model listing endpoint return
	// ErrModelListingUnsupported.
	ListVisionModels(ctx context.Context, creds ProviderCredentials) ([]string, error)
}

var ErrModelListingUnsupported = errors.New("provider does not support model listing")

// ProviderError is a typed provider failure, so callers classify on status
// and code instead of pattern-matching error text.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// imageRejectionCodes are the provider error codes that mean the request
// image itself was not accepted. OpenAI-compatible endpoints use the first
// group, Gemini reports INVALID_ARGUMENT.
var imageRejectionCodes = map[string]struct{}{
	"invalid_image":        {},
	"invalid_image_format": {},
	"invalid_image_url":    {},
	"invalid_base64":       {},
	"image_parse_error":    {},
	"INVALID_ARGUMENT":     {},
}

// IsImageRejection reports whether err is a provider rejection of the image
// itself. Those are recovered with a mock analysis, every other provider
// failure surfaces as an explicit error analysis. Only HTTP 400 qualifies:
// our request shape is fixed, so a bad-request from the provider can only be
// about the payload we do not control.
func IsImageRejection(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.StatusCode != http.StatusBadRequest {
		return false
	}
	if pe.Code == "" {
		return true
	}
	_, ok := imageRejectionCodes[pe.Code]
	return ok
}
