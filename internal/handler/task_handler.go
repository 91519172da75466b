package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/dto"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/service"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
	"github.com/foyerhq/foyer-api/pkg/response"
)

// TaskHandler exposes task CRUD, the today view and CSV import.
type TaskHandler struct {
	tasks   *service.TaskService
	imports *service.ImportService
}

// NewTaskHandler creates a new handler.
func NewTaskHandler(tasks *service.TaskService, imports *service.ImportService) *TaskHandler {
	return &TaskHandler{tasks: tasks, imports: imports}
}

// List godoc
// @Summary List tasks
// @Description List household tasks, optionally filtered by status, assignee and local date range
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "TODO or DONE"
// @Param assignee_id query string false "Assignee user id"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid list filters"))
		return
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), claims.HouseholdID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 20
	}
	response.JSON(c, http.StatusOK, tasks, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// Get godoc
// @Summary Get one task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	task, err := h.tasks.Get(c.Request.Context(), claims.HouseholdID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Create godoc
// @Summary Create a task
// @Description Create a task; the due date and time are local to the household
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), claims.HouseholdID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Update godoc
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Param payload body dto.TaskRequest true "Task payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), claims.HouseholdID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.tasks.Delete(c.Request.Context(), claims.HouseholdID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Today godoc
// @Summary Tasks due today
// @Description Tasks whose due instant falls within the household's current local day
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /tasks/today [get]
func (h *TaskHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	out, err := h.tasks.Today(c.Request.Context(), claims.HouseholdID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out, nil)
}

// Import godoc
// @Summary Import tasks from CSV
// @Description Upload a CSV file (multipart field "file" or raw body) and create the valid rows
// @Tags Tasks
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file false "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks/import [post]
func (h *TaskHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)

	reader := c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		defer opened.Close()
		reader = opened
	}

	result, err := h.imports.ImportTasks(c.Request.Context(), claims.HouseholdID, reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
