package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/dto"
	"github.com/mhizterkeyz/resultify-api/internal/middleware"
	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/service"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/response"
)

type cohortReporter interface {
	ComputeCohortReport(ctx context.Context, q models.CohortQuery) (*models.CohortReport, error)
}

type resultLifecycle interface {
	Submit(ctx context.Context, req service.TransitionRequest) (*service.TransitionOutcome, error)
	Approve(ctx context.Context, req service.TransitionRequest) (*service.TransitionOutcome, error)
	OfficerReject(ctx context.Context, req service.TransitionRequest) (*service.TransitionOutcome, error)
	AdminReject(ctx context.Context, req service.TransitionRequest) (*service.TransitionOutcome, error)
}

type broadsheetRenderer interface {
	Broadsheet(ctx context.Context, q models.CohortQuery, format service.BroadsheetFormat) (*service.Broadsheet, error)
}

type transitionFunc func(ctx context.Context, req service.TransitionRequest) (*service.TransitionOutcome, error)

// ResultHandler exposes cohort reports and the result approval workflow.
type ResultHandler struct {
	reports   cohortReporter
	lifecycle resultLifecycle
	exports   broadsheetRenderer
}

// NewResultHandler constructs handler.
func NewResultHandler(reports cohortReporter, lifecycle resultLifecycle, exports broadsheetRenderer) *ResultHandler {
	return &ResultHandler{reports: reports, lifecycle: lifecycle, exports: exports}
}

// OfficerReport godoc
// @Summary Cohort term results for the group officer
// @Tags Results
// @Produce json
// @Param groupId path string true "Group ID"
// @Param student_set query int true "Student set"
// @Param year_submitted query int true "Academic year"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /officer/groups/{groupId}/results [get]
func (h *ResultHandler) OfficerReport(c *gin.Context) {
	h.report(c, models.ReportViewOfficer)
}

// AdminReport godoc
// @Summary Officer-approved cohort term results
// @Tags Results
// @Produce json
// @Param groupId path string true "Group ID"
// @Param student_set query int true "Student set"
// @Param year_submitted query int true "Academic year"
// @Param semester query int true "Semester"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{groupId}/results [get]
func (h *ResultHandler) AdminReport(c *gin.Context) {
	h.report(c, models.ReportViewAdmin)
}

// OfficerBroadsheet godoc
// @Summary Download the cohort broadsheet
// @Tags Results
// @Produce text/csv,application/pdf
// @Param groupId path string true "Group ID"
// @Param student_set query int true "Student set"
// @Param year_submitted query int true "Academic year"
// @Param semester query int true "Semester"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /officer/groups/{groupId}/results/broadsheet [get]
func (h *ResultHandler) OfficerBroadsheet(c *gin.Context) {
	h.broadsheet(c, models.ReportViewOfficer)
}

// AdminBroadsheet godoc
// @Summary Download the officer-approved cohort broadsheet
// @Tags Results
// @Produce text/csv,application/pdf
// @Param groupId path string true "Group ID"
// @Param student_set query int true "Student set"
// @Param year_submitted query int true "Academic year"
// @Param semester query int true "Semester"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /admin/groups/{groupId}/results/broadsheet [get]
func (h *ResultHandler) AdminBroadsheet(c *gin.Context) {
	h.broadsheet(c, models.ReportViewAdmin)
}

// Submit godoc
// @Summary Send a fully submitted cohort term for administrator review
// @Tags Results
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body dto.TransitionRequest true "Cohort term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /officer/groups/{groupId}/results/submit [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	h.transition(c, h.lifecycle.Submit, models.ReportViewOfficer, "Result sent for review")
}

// OfficerReject godoc
// @Summary Return one course's submitted results to its lecturer
// @Tags Results
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body dto.TransitionRequest true "Cohort term and course"
// @Success 200 {object} response.Envelope
// @Router /officer/groups/{groupId}/results/reject [post]
func (h *ResultHandler) OfficerReject(c *gin.Context) {
	h.transition(c, h.lifecycle.OfficerReject, models.ReportViewOfficer, "Result rejected for reanalysis")
}

// Approve godoc
// @Summary Finalise an officer-approved cohort term
// @Tags Results
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body dto.TransitionRequest true "Cohort term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/groups/{groupId}/results/approve [post]
func (h *ResultHandler) Approve(c *gin.Context) {
	h.transition(c, h.lifecycle.Approve, models.ReportViewAdmin, "Result approved")
}

// AdminReject godoc
// @Summary Send results back to the group officer
// @Tags Results
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param payload body dto.TransitionRequest true "Cohort term, optionally one course"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{groupId}/results/reject [post]
func (h *ResultHandler) AdminReject(c *gin.Context) {
	h.transition(c, h.lifecycle.AdminReject, models.ReportViewAdmin, "Result rejected for reanalysis")
}

func (h *ResultHandler) report(c *gin.Context, view models.ReportView) {
	q, _, ok := bindCohortQuery(c, view)
	if !ok {
		return
	}
	report, err := h.reports.ComputeCohortReport(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "students", len(report.Results))
	middleware.SetMeta(c, "level", report.Level)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

func (h *ResultHandler) broadsheet(c *gin.Context, view models.ReportView) {
	q, format, ok := bindCohortQuery(c, view)
	if !ok {
		return
	}
	sheet, err := h.exports.Broadsheet(c.Request.Context(), q, service.BroadsheetFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, sheet.Filename, sheet.ContentType, sheet.Body)
}

func (h *ResultHandler) transition(c *gin.Context, apply transitionFunc, view models.ReportView, message string) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scope := req.Scope(groupIDFromContext(c))
	outcome, err := apply(c.Request.Context(), service.TransitionRequest{Scope: scope, Message: req.Message})
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.ComputeCohortReport(c.Request.Context(), models.CohortQuery{
		GroupID:    scope.GroupID,
		StudentSet: scope.StudentSet,
		Year:       scope.Year,
		Semester:   scope.Semester,
		View:       view,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TransitionResponse{
		Message:  message,
		Affected: outcome.Affected,
		Notified: outcome.Notified,
		Report:   report,
	}, nil)
}

func bindCohortQuery(c *gin.Context, view models.ReportView) (models.CohortQuery, string, bool) {
	var query dto.CohortTermQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return models.CohortQuery{}, "", false
	}
	return models.CohortQuery{
		GroupID:    groupIDFromContext(c),
		StudentSet: query.StudentSet,
		Year:       query.Year,
		Semester:   query.Semester,
		View:       view,
	}, query.Format, true
}
