package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tejgit8102/expensemate-backend/internal/errors"
	"github.com/tejgit8102/expensemate-backend/internal/services"
)

// ReportHandler handles report-related requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportPeriod parses the month/year query parameters. Month is nil when
// absent; both default sensibly for the caller's report kind.
func reportPeriod(c *gin.Context) (*int, int, error) {
	var month *int
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return nil, 0, apperrors.ErrInvalidMonth
		}
		month = &parsed
	}

	year := time.Now().Year()
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year")
		}
		year = parsed
	}
	return month, year, nil
}

// MonthlyReport handles generating a monthly report
// @Summary     Get monthly report
// @Description Aggregate one calendar month into totals and category sums
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12, default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.Report "Monthly report"
// @Failure     400 {object} ErrorResponse "Invalid month or year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) MonthlyReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	monthPtr, year, err := reportPeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	month := int(time.Now().Month())
	if monthPtr != nil {
		month = *monthPtr
	}

	report, err := h.reportService.MonthlyReport(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// AnnualReport handles generating an annual report
// @Summary     Get annual report
// @Description Aggregate a whole year into totals, category sums, and per-month sums
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (default current)"
// @Success     200 {object} services.Report "Annual report"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/annual [get]
func (h *ReportHandler) AnnualReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	_, year, err := reportPeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.AnnualReport(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportPDF handles downloading a report as PDF
// @Summary     Export report as PDF
// @Description Download a monthly report (month given) or annual report as PDF
// @Tags        reports
// @Accept      json
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       month query int false "Month (1-12); omit for an annual report"
// @Param       year  query int false "Year (default current)"
// @Success     200 {file} file "PDF document"
// @Failure     400 {object} ErrorResponse "Invalid month or year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := reportPeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, filename, err := h.reportService.ExportPDF(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportExcel handles downloading a report as an Excel workbook
// @Summary     Export report as Excel
// @Description Download a monthly report (month given) or annual report as XLSX
// @Tags        reports
// @Accept      json
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       month query int false "Month (1-12); omit for an annual report"
// @Param       year  query int false "Year (default current)"
// @Success     200 {file} file "XLSX workbook"
// @Failure     400 {object} ErrorResponse "Invalid month or year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export/excel [get]
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := reportPeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, filename, err := h.reportService.ExportExcel(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
