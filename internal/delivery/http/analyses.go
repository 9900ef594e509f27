package http

import (
	"net/http"
	"strconv"
	"time"

	"stock-analyzer/internal/dto"
	"stock-analyzer/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalyses(base *echo.Group) {
	v1 := base.Group("/v1/analyses")
	{
		v1.GET("/latest", h.getLatestAnalyses)
		v1.GET("/daily", h.getDailyAnalyses)
		v1.GET("/:id", h.getAnalysisDetail)
	}
}

func (h *HttpAPIHandler) getLatestAnalyses(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.GetLatestAnalysesRequest)
	if err := c.Bind(req); err != nil {
		response := dto.NewBadRequestResponse("invalid query parameters")
		return c.JSON(response.Code, response)
	}
	if err := h.validator.Struct(req); err != nil {
		response := dto.NewBadRequestResponse(err.Error())
		return c.JSON(response.Code, response)
	}

	analyses, err := h.service.AnalysisService.GetLatestAnalyses(ctx, req)
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to get analyses", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Latest analyses", analyses)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) getDailyAnalyses(c echo.Context) error {
	ctx := c.Request().Context()

	day := utils.TruncateToDay(utils.TimeNowJST())
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, utils.GetJSTLocation())
		if err != nil {
			response := dto.NewBadRequestResponse("date must be YYYY-MM-DD")
			return c.JSON(response.Code, response)
		}
		day = parsed
	}

	analyses, err := h.service.AnalysisService.GetAnalysesByDay(ctx, day)
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to get analyses", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Analyses for day", analyses)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) getAnalysisDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response := dto.NewBadRequestResponse("id must be a positive integer")
		return c.JSON(response.Code, response)
	}

	detail, err := h.service.AnalysisService.GetAnalysisDetail(ctx, uint(id))
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to get analysis", nil)
		return c.JSON(response.Code, response)
	}
	if detail == nil {
		response := dto.NewBaseResponse(http.StatusNotFound, "analysis not found", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Analysis detail", detail)
	return c.JSON(response.Code, response)
}
