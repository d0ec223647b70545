package http

import (
	"net/http"

	"github.com/yizhaofeng1/ai-trader/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSettings(base *echo.Group) {
	v1 := base.Group("/v1/settings")
	{
		v1.PUT("/ai", h.updateAISettings)
		v1.GET("/models", h.listVisionModels)
	}

	strategyGroup := base.Group("/v1/strategy-config")
	{
		strategyGroup.GET("", h.getStrategyConfig)
		strategyGroup.PUT("", h.updateStrategyConfig)
	}
}

func (h *HttpAPIHandler) updateAISettings(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.UpdateAISettingsRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if err := h.service.SettingsService.UpdateAISettings(ctx, *req); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to update AI settings", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("AI settings updated", nil))
}

func (h *HttpAPIHandler) listVisionModels(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	models, err := h.service.SettingsService.ListVisionModels(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to list models", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("models loaded", models))
}

func (h *HttpAPIHandler) getStrategyConfig(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	cfg, err := h.service.SettingsService.GetStrategyConfig(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load strategy config", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("strategy config loaded", cfg))
}

func (h *HttpAPIHandler) updateStrategyConfig(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.UpdateStrategyConfigRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	cfg, err := h.service.SettingsService.UpdateStrategyConfig(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to save strategy config", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("strategy config saved", cfg))
}
