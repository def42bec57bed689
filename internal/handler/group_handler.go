package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/response"
)

type assignedGroupLister interface {
	ListByAdmin(ctx context.Context, adminID string) ([]models.Group, error)
}

// GroupHandler lists the groups an officer administers.
type GroupHandler struct {
	groups assignedGroupLister
}

// NewGroupHandler constructs handler.
func NewGroupHandler(groups assignedGroupLister) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// Assigned godoc
// @Summary Groups assigned to the current officer
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /officer/groups [get]
func (h *GroupHandler) Assigned(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	groups, err := h.groups.ListByAdmin(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to load groups"))
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
