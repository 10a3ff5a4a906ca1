package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	salesService *service.SalesService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(salesService *service.SalesService) *DashboardHandler {
	return &DashboardHandler{salesService: salesService}
}

// SalesOverview handles the revenue summary, optionally bucketed by period
// @Summary Sales Overview
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param userId query string false "Biller filter (admins only)"
// @Param period query string false "daily, weekly or monthly"
// @Success 200 {object} response.APIResponse
// @Router /dashboard/sales-overview [get]
func (h *DashboardHandler) SalesOverview(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		return
	}

	var req request.SalesOverviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	overview, err := h.salesService.GetSalesOverview(c.Request.Context(), actor, &service.SalesOverviewInput{
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Period:    req.Period,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales overview retrieved successfully", overview)
}

// ProductInsights handles the top and least sold products
func (h *DashboardHandler) ProductInsights(c *gin.Context) {
	insights, err := h.salesService.GetProductInsights(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product insights retrieved successfully", insights)
}

// UserStats handles per biller revenue
func (h *DashboardHandler) UserStats(c *gin.Context) {
	stats, err := h.salesService.GetUserStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User stats retrieved successfully", stats)
}
