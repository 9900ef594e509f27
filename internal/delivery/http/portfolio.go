package http

import (
	"net/http"
	"strconv"

	"stock-analyzer/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPortfolio(base *echo.Group) {
	v1 := base.Group("/v1/portfolios")
	{
		v1.GET("/:id/proposals", h.getProposals)
		v1.POST("/:id/proposals/refresh", h.refreshProposals)
		v1.POST("/proposals/:proposalId/read", h.markProposalRead)
	}
}

func (h *HttpAPIHandler) getProposals(c echo.Context) error {
	ctx := c.Request().Context()

	portfolioID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response := dto.NewBadRequestResponse("id must be a positive integer")
		return c.JSON(response.Code, response)
	}

	unreadOnly := c.QueryParam("unread_only") != "false"

	proposals, err := h.service.PortfolioService.GetProposals(ctx, uint(portfolioID), unreadOnly)
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to get proposals", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Action proposals", proposals)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) refreshProposals(c echo.Context) error {
	ctx := c.Request().Context()

	portfolioID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response := dto.NewBadRequestResponse("id must be a positive integer")
		return c.JSON(response.Code, response)
	}

	proposals, err := h.service.PortfolioService.RefreshProposals(ctx, uint(portfolioID))
	if err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to refresh proposals", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Proposals refreshed", proposals)
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) markProposalRead(c echo.Context) error {
	ctx := c.Request().Context()

	proposalID, err := strconv.ParseUint(c.Param("proposalId"), 10, 64)
	if err != nil {
		response := dto.NewBadRequestResponse("proposalId must be a positive integer")
		return c.JSON(response.Code, response)
	}

	if err := h.service.PortfolioService.MarkProposalRead(ctx, uint(proposalID)); err != nil {
		response := dto.NewBaseResponse(http.StatusInternalServerError, "failed to mark proposal read", nil)
		return c.JSON(response.Code, response)
	}

	response := dto.NewSuccessResponse("Proposal marked read", nil)
	return c.JSON(response.Code, response)
}
