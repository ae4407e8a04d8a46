package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/middleware"
	"github.com/plusiam/sisu/internal/models"
)

// claimsFromContext pulls the authenticated user set by the JWT middleware.
// Returns nil on public routes or when the middleware did not run.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
