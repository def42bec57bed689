package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/middleware"
	"github.com/mhizterkeyz/resultify-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func groupIDFromContext(c *gin.Context) string {
	if value, exists := c.Get(middleware.ContextGroupKey); exists {
		if group, ok := value.(*models.Group); ok {
			return group.ID
		}
	}
	return c.Param("groupId")
}
