package handler

import (
	"fmt"
	"net/http"

	"github.com/mrinmay27/the149-store/internal/apierror"
	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/infra"
	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) bindFilter(c *gin.Context) (dto.ReportFilter, bool) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, err.Error()))
		return filter, false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, "dates must be YYYY-MM-DD"))
		return filter, false
	}
	return filter, true
}

// Summary aggregates sales, expenses and deposits over a date range
// (default: today). Managers get the summary without the bank balance.
func (h *ReportsHandler) Summary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Summary(c.Request.Context(), claims.Role, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummaryPDF renders the same summary as a printable A5 sheet.
func (h *ReportsHandler) SummaryPDF(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	summary, err := h.svc.Summary(c.Request.Context(), claims.Role, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=summary_%s_%s.pdf", summary.From, summary.To))
	if err := infra.WriteSummaryPDF(summary, c.Writer); err != nil {
		_ = c.Error(err)
	}
}
