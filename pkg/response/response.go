package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/models"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
)

// Envelope is the body shape every endpoint answers with. Exactly one of
// Data or Error is set; Pagination and Meta ride along on list responses.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// Schedule data is per-user and time-sensitive; intermediaries must not
// cache it.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON writes a success envelope. Pagination may be nil; at most one meta
// map is honoured.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	out := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		out.Meta = meta[0]
	}
	c.JSON(status, out)
}

// Created writes a 201 envelope around the new resource.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// NoContent answers 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error coerces err into the typed error shape and answers with its status.
func Error(c *gin.Context, err error) {
	noStore(c)
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}
