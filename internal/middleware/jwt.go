package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/service"
	appErrors "github.com/foyerhq/foyer-api/pkg/errors"
	"github.com/foyerhq/foyer-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// bearerToken extracts the token from an Authorization header, or "" when
// the header is absent or not a Bearer scheme.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func authenticate(c *gin.Context, authService *service.AuthService, token string) {
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return
	}
	claims, err := authService.ValidateToken(token)
	if err != nil {
		response.Error(c, err)
		c.Abort()
		return
	}
	c.Set(ContextUserKey, claims)
	c.Next()
}

// JWT guards a route with a Bearer access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, authService, bearerToken(c))
	}
}

// FeedAuth authenticates like JWT but also accepts an access_token query
// parameter. Calendar apps subscribing to the ICS feed cannot send headers.
func FeedAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("access_token")
		}
		authenticate(c, authService, token)
	}
}
