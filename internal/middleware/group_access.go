package middleware

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/response"
)

// ContextGroupKey is the gin context key storing the resolved *models.Group.
const ContextGroupKey = "currentGroup"

type groupFinder interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

// GroupAccess loads the group named by the path parameter param. Group
// administrators may only reach groups assigned to them; administrators reach any.
func GroupAccess(groups groupFinder, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		group, err := groups.FindByID(c.Request.Context(), c.Param(param))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "group not found"))
			} else {
				response.Error(c, appErrors.Internal(err, "failed to load group"))
			}
			c.Abort()
			return
		}

		if claims.Role != models.RoleAdministrator {
			if group.GroupAdminID == nil || *group.GroupAdminID != claims.UserID {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Group wasn't assigned to you."))
				c.Abort()
				return
			}
		}

		c.Set(ContextGroupKey, group)
		c.Next()
	}
}
