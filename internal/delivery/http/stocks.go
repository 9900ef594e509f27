package http

import (
	"errors"
	"net/http"

	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStocks(base *echo.Group) {
	v1 := base.Group("/v1/stocks")
	{
		v1.GET("", h.listStocks)
		v1.POST("", h.createStock)
	}
}

func (h *HttpAPIHandler) listStocks(c echo.Context) error {
	ctx := c.Request().Context()

	stocks, err := h.service.StockService.ListStocks(ctx)
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to list stocks", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Stocks", stocks)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) createStock(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.CreateStockRequest)
	if err := c.Bind(req); err != nil {
		response := dto.NewBadRequestResponse("invalid request body")
		return c.JSON(response.Code, response)
	}
	if err := h.validator.Struct(req); err != nil {
		response := dto.NewBadRequestResponse(err.Error())
		return c.JSON(response.Code, response)
	}

	stock, err := h.service.StockService.CreateStock(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrStockAlreadyExists) {
			response := dto.NewBaseResponse(http.StatusConflict, err.Error(), nil)
			return c.JSON(response.Code, response)
		}
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to create stock", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewBaseResponse(http.StatusCreated, "Stock created", stock)
	return c.JSON(response.Code, response)
}
