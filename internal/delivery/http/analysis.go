package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/yizhaofeng1/ai-trader/internal/dto"

	"github.com/labstack/echo/v4"
)

const (
	maxChartImageBytes = 10 << 20
	defaultHistorySize = 20
)

func (h *HttpAPIHandler) SetupAnalyses(base *echo.Group) {
	v1 := base.Group("/v1/analyses")
	{
		v1.POST("", h.createAnalysis)
		v1.GET("", h.getAnalysisHistory)
		v1.GET("/:id", h.getAnalysis)
		v1.DELETE("/:id", h.deleteAnalysis)
	}
}

// createAnalysis accepts a multipart chart upload and runs the full
// pipeline: vision analysis, strategy evaluation, persistence.
func (h *HttpAPIHandler) createAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.FormValue("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("chart image is required"))
	}
	if fileHeader.Size > maxChartImageBytes {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("chart image exceeds 10MB"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("failed to open chart image"))
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("failed to read chart image"))
	}

	record, result, err := h.service.AnalyzerService.Analyze(ctx, userID, image)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("analysis complete", echo.Map{
		"record_id":               record.ID,
		"source":                  result.Source,
		"analysis":                result.Analysis,
		"recommended_stop_loss":   result.Analysis.RecommendedStopLoss(),
		"recommended_take_profit": result.Analysis.RecommendedTakeProfit(),
	}))
}

func (h *HttpAPIHandler) getAnalysisHistory(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	limit := defaultHistorySize
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.service.AnalyzerService.GetHistory(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load history", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("history loaded", records))
}

// getAnalysis returns a stored record plus its analysis read back from the
// artifact store, the database copy serving as fallback.
func (h *HttpAPIHandler) getAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	recordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid record id"))
	}

	record, analysis, err := h.service.AnalyzerService.GetAnalysis(ctx, userID, uint(recordID))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load analysis", nil))
	}
	if record == nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "analysis not found", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("analysis loaded", echo.Map{
		"record":   record,
		"analysis": analysis,
	}))
}

func (h *HttpAPIHandler) deleteAnalysis(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	recordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid record id"))
	}

	if err := h.service.AnalyzerService.DeleteRecord(ctx, userID, uint(recordID)); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to delete analysis", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("analysis deleted", nil))
}

func parseUserID(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, echo.ErrBadRequest
	}
	return uint(parsed), nil
}
