package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/middleware"
	"github.com/foyerhq/foyer-api/internal/models"
)

// claimsFromContext reads the JWT claims stored by the auth middleware.
// Routes behind JWT always have them; a nil return means the route was
// registered without the guard, a wiring bug the recovery middleware turns
// into a 500.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
