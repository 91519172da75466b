package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/service"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
	"github.com/foyerhq/foyer-api/pkg/response"
)

// HouseholdHandler exposes household settings and membership.
type HouseholdHandler struct {
	service *service.HouseholdService
}

// NewHouseholdHandler creates a new handler.
func NewHouseholdHandler(svc *service.HouseholdService) *HouseholdHandler {
	return &HouseholdHandler{service: svc}
}

type settingsRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone" binding:"required"`
}

// Get godoc
// @Summary Get household settings
// @Tags Household
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /household [get]
func (h *HouseholdHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	household, err := h.service.Get(c.Request.Context(), claims.HouseholdID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, household, nil)
}

// UpdateSettings godoc
// @Summary Update household settings
// @Description Change the household name and IANA timezone
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body handler.settingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /household [put]
func (h *HouseholdHandler) UpdateSettings(c *gin.Context) {
	claims := claimsFromContext(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}

	household, err := h.service.UpdateSettings(c.Request.Context(), claims.HouseholdID, req.Name, req.Timezone)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, household, nil)
}

// Members godoc
// @Summary List household members
// @Tags Household
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /household/members [get]
func (h *HouseholdHandler) Members(c *gin.Context) {
	claims := claimsFromContext(c)
	members, err := h.service.Members(c.Request.Context(), claims.HouseholdID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}
