package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/service"
	"github.com/foyerhq/foyer-api/pkg/response"
)

// ExportHandler serves planner downloads and the ICS feed.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// PlannerCSV godoc
// @Summary Download the planner as CSV
// @Tags Exports
// @Produce text/csv
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param days query int false "Number of days"
// @Success 200 {file} file
// @Router /exports/planner.csv [get]
func (h *ExportHandler) PlannerCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	payload, filename, err := h.service.PlannerCSV(c.Request.Context(), claims.HouseholdID, c.Query("start"), days, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// PlannerPDF godoc
// @Summary Download the planner as PDF
// @Tags Exports
// @Produce application/pdf
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param days query int false "Number of days"
// @Success 200 {file} file
// @Router /exports/planner.pdf [get]
func (h *ExportHandler) PlannerPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	payload, filename, err := h.service.PlannerPDF(c.Request.Context(), claims.HouseholdID, c.Query("start"), days, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ICSFeed godoc
// @Summary Calendar subscription feed
// @Description Serve upcoming work segments as an iCalendar feed
// @Tags Exports
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {string} string
// @Router /exports/feed.ics [get]
func (h *ExportHandler) ICSFeed(c *gin.Context) {
	claims := claimsFromContext(c)

	feed, err := h.service.ICSFeed(c.Request.Context(), claims.HouseholdID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
