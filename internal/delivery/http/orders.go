package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupOrders(base *echo.Group) {
	v1 := base.Group("/v1/orders")
	{
		v1.POST("", h.placeOrder)
		v1.GET("", h.getOrders)
	}

	accountGroup := base.Group("/v1/accounts")
	{
		accountGroup.GET("", h.getAccount)
	}
}

func (h *HttpAPIHandler) placeOrder(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.PlaceOrderRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	order, err := h.service.OrderService.PlaceOrder(ctx, *req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientFunds):
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		case errors.Is(err, service.ErrBrokerNotConfigured):
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to place order", nil))
		}
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("order placed", order))
}

func (h *HttpAPIHandler) getOrders(c echo.Context) error {
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

	orders, err := h.service.OrderService.GetOrders(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load orders", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("orders loaded", orders))
}

func (h *HttpAPIHandler) getAccount(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := parseUserID(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user_id"))
	}

	account, err := h.service.OrderService.GetAccount(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load account", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("account loaded", account))
}
