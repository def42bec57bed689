package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/service"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/grading"
	"github.com/mhizterkeyz/resultify-api/pkg/response"
)

type groupOptionsService interface {
	Get(ctx context.Context, groupID string, set int) (*models.GroupOptions, error)
	Update(ctx context.Context, groupID string, set int, req service.UpdateGroupOptionsRequest) (*models.GroupOptions, error)
}

// GroupOptionsHandler exposes per-set grading configuration.
type GroupOptionsHandler struct {
	service groupOptionsService
}

// NewGroupOptionsHandler builds a new handler.
func NewGroupOptionsHandler(service groupOptionsService) *GroupOptionsHandler {
	return &GroupOptionsHandler{service: service}
}

// Get godoc
// @Summary Get group set options
// @Tags Group Options
// @Produce json
// @Param groupId path string true "Group ID"
// @Param set path int true "Student set"
// @Success 200 {object} response.Envelope
// @Router /officer/groups/{groupId}/options/{set} [get]
func (h *GroupOptionsHandler) Get(c *gin.Context) {
	set, ok := setParam(c)
	if !ok {
		return
	}
	opts, err := h.service.Get(c.Request.Context(), groupIDFromContext(c), set)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts, nil)
}

// Update godoc
// @Summary Update group set options
// @Tags Group Options
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param set path int true "Student set"
// @Param payload body service.UpdateGroupOptionsRequest true "Options"
// @Success 200 {object} response.Envelope
// @Router /officer/groups/{groupId}/options/{set} [put]
func (h *GroupOptionsHandler) Update(c *gin.Context) {
	set, ok := setParam(c)
	if !ok {
		return
	}
	var req service.UpdateGroupOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group options payload"))
		return
	}
	opts, err := h.service.Update(c.Request.Context(), groupIDFromContext(c), set, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts, nil)
}

// GradeSystems godoc
// @Summary List recognised grade systems
// @Tags Group Options
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-systems [get]
func (h *GroupOptionsHandler) GradeSystems(c *gin.Context) {
	response.JSON(c, http.StatusOK, grading.Systems(), nil)
}

func setParam(c *gin.Context) (int, bool) {
	set, err := strconv.Atoi(c.Param("set"))
	if err != nil || set <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "set must be a positive year"))
		return 0, false
	}
	return set, true
}
