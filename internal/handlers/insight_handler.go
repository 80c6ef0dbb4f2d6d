package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/services"
)

// InsightHandler handles insight-related requests.
type InsightHandler struct {
	insightService services.InsightServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// insightPeriodQuery carries the optional period selector.
type insightPeriodQuery struct {
	Period string `form:"period" binding:"omitempty,period_selector"`
}

// GetInsights handles generating spending insights
// @Summary     Get insights
// @Description Generate spending insights for a period ("all", "current", or "YYYY-MM"; default all)
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Period selector"
// @Success     200 {object} services.Insights "Computed insights"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query insightPeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.ErrInvalidPeriod)
		return
	}

	insights, err := h.insightService.GenerateInsights(userID, query.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

// ExportInsightsPDF handles exporting insights as a PDF document
// @Summary     Export insights as PDF
// @Description Generate spending insights for a period and download them as PDF
// @Tags        insights
// @Accept      json
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       period query string false "Period selector"
// @Success     200 {file} file "PDF document"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/export-pdf [get]
func (h *InsightHandler) ExportInsightsPDF(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query insightPeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.ErrInvalidPeriod)
		return
	}

	data, err := h.insightService.ExportInsightsPDF(userID, query.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="insights.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
