package repository

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yizhaofeng1/ai-trader/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "400 with known image code",
			err:  &ProviderError{StatusCode: http.StatusBadRequest, Code: "invalid_image_format"},
			want: true,
		},
		{
			name: "400 with gemini invalid argument",
			err:  &ProviderError{StatusCode: http.StatusBadRequest, Code: "INVALID_ARGUMENT"},
			want: true,
		},
		{
			name: "400 without a code still counts",
			err:  &ProviderError{StatusCode: http.StatusBadRequest},
			want: true,
		},
		{
			name: "400 with unrelated code does not",
			err:  &ProviderError{StatusCode: http.StatusBadRequest, Code: "invalid_api_key"},
			want: false,
		},
		{
			name: "401 is never an image rejection",
			err:  &ProviderError{StatusCode: http.StatusUnauthorized, Code: "invalid_api_key"},
			want: false,
		},
		{
			name: "500 is never an image rejection",
			err:  &ProviderError{StatusCode: http.StatusInternalServerError},
			want: false,
		},
		{
			name: "wrapped provider error is unwrapped",
			err:  fmt.Errorf("analyze: %w", &ProviderError{StatusCode: http.StatusBadRequest, Code: "invalid_base64"}),
			want: true,
		},
		{
			name: "plain error is not classified",
			err:  errors.New("image decoding failed"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsImageRejection(tt.err))
		})
	}
}

func TestParseModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "bare JSON object",
			raw:  `{"symbol": "600519", "signal": "BUY", "score": 85}`,
		},
		{
			name: "markdown fenced JSON",
			raw:  "```json\n{\"symbol\": \"600519\", \"signal\": \"BUY\", \"score\": 85}\n```",
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"symbol\": \"600519\", \"signal\": \"BUY\", \"score\": 85}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var analysis dto.ChartAnalysis
			require.NoError(t, parseModelJSON(tt.raw, &analysis))
			assert.Equal(t, "600519", analysis.Symbol)
			assert.Equal(t, "BUY", analysis.Signal)
			assert.Equal(t, 85, analysis.Score)
		})
	}
}

func TestParseModelJSON_Invalid(t *testing.T) {
	var analysis dto.ChartAnalysis
	assert.Error(t, parseModelJSON("the chart shows an uptrend", &analysis))
}
