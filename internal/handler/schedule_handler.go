package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/service"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
	"github.com/foyerhq/foyer-api/pkg/response"
)

// ScheduleHandler exposes the work-schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Get godoc
// @Summary Get the stored work schedule
// @Description Return the normalized weekly template and exception list
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.service.Get(c.Request.Context(), claims.HouseholdID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// UpdateWeekly godoc
// @Summary Replace the weekly template
// @Description Replace the whole weekly work template; the payload is normalized before storage
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateWeeklyRequest true "Weekly template"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/weekly [put]
func (h *ScheduleHandler) UpdateWeekly(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.UpdateWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weekly payload"))
		return
	}

	out, err := h.service.UpdateWeekly(c.Request.Context(), claims.HouseholdID, req.Weekly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// ListExceptions godoc
// @Summary List schedule exceptions
// @Description Return the stored overrides in append order
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/exceptions [get]
func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.service.ListExceptions(c.Request.Context(), claims.HouseholdID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// AddException godoc
// @Summary Add a schedule exception
// @Description Append one date-scoped override (OFF, REPLACE or ADD)
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExceptionRequest true "Exception payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/exceptions [post]
func (h *ScheduleHandler) AddException(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exception payload"))
		return
	}

	out, err := h.service.AddException(c.Request.Context(), claims.HouseholdID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, out)
}

// UpdateException godoc
// @Summary Update a schedule exception
// @Description Rewrite one override matched by id
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exception id"
// @Param payload body dto.ExceptionRequest true "Exception payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/exceptions/{id} [patch]
func (h *ScheduleHandler) UpdateException(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exception payload"))
		return
	}

	out, err := h.service.UpdateException(c.Request.Context(), claims.HouseholdID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// DeleteException godoc
// @Summary Delete a schedule exception
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exception id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/exceptions/{id} [delete]
func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.DeleteException(c.Request.Context(), claims.HouseholdID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Day godoc
// @Summary Resolve one day
// @Description Compute the effective working segments for a date
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/day [get]
func (h *ScheduleHandler) Day(c *gin.Context) {
	claims := claimsFromContext(c)

	date := c.Query("date")
	var (
		out *dto.DayResponse
		err error
	)
	if date == "" {
		out, err = h.service.Today(c.Request.Context(), claims.HouseholdID, time.Now())
	} else {
		out, err = h.service.ResolveDay(c.Request.Context(), claims.HouseholdID, date)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Planner godoc
// @Summary Project the schedule over a range
// @Description One row per day with the primary window, for week and month views
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD), defaults to today"
// @Param days query int false "Number of days"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/planner [get]
func (h *ScheduleHandler) Planner(c *gin.Context) {
	claims := claimsFromContext(c)

	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	out, err := h.service.Planner(c.Request.Context(), claims.HouseholdID, c.Query("start"), days, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}
