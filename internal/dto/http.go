package dto

import "net/http"

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, message, data)
}

type UpdateStrategyConfigRequest struct {
	UserID              uint  `json:"user_id" validate:"required"`
	MinScoreBuy         int   `json:"min_score_buy" validate:"min=0,max=100"`
	RequireBullishMA    *bool `json:"require_bullish_ma" validate:"required"`
	MaxRiskFactors      int   `json:"max_risk_factors" validate:"min=0"`
	AllowSideways       *bool `json:"allow_sideways" validate:"required"`
	MinConfidence       int   `json:"min_confidence" validate:"min=0,max=100"`
	AllowHighVolatility *bool `json:"allow_high_volatility" validate:"required"`
}

type UpdateAISettingsRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	APIKey     string `json:"api_key"`
	APIBaseURL string `json:"api_base_url" validate:"omitempty,url"`
	AIModel    string `json:"ai_model"`
}

type PlaceOrderRequest struct {
	UserID           uint    `json:"user_id" validate:"required"`
	AnalysisRecordID *uint   `json:"analysis_record_id"`
	Symbol           string  `json:"symbol" validate:"required"`
	Price            float64 `json:"price" validate:"required,gt=0"`
	Quantity         int     `json:"quantity" validate:"required,gt=0"`
	Direction        string  `json:"direction" validate:"required,oneof=BUY SELL"`
	StopLoss         float64 `json:"stop_loss" validate:"omitempty,gt=0"`
	TakeProfit       float64 `json:"take_profit" validate:"omitempty,gt=0"`
}
