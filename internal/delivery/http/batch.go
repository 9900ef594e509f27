package http

import (
	"errors"
	"net/http"

	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBatch(base *echo.Group) {
	v1 := base.Group("/v1/batch")
	{
		v1.POST("/run", h.runBatch)
		v1.GET("/status", h.getBatchStatus)
	}
}

func (h *HttpAPIHandler) runBatch(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.BatchService.Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrBatchAlreadyRunning) {
			response := dto.NewBaseResponse(http.StatusConflict, err.Error(), nil)
			return c.JSON(response.Code, response)
		}
		response := dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Batch run finished", result)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) getBatchStatus(c echo.Context) error {
	ctx := c.Request().Context()

	jobLog, err := h.service.BatchService.GetLatestJobLog(ctx)
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to get batch status", nil)
		return c.JSON(response.Code, response)
	}
	if jobLog == nil {
		response := dto.NewBaseResponse(http.StatusNotFound, "no batch run recorded yet", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Latest batch run", jobLog)
	return c.JSON(response.Code, response)
}
