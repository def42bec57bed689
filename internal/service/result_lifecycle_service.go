package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/repository"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

type scopedRegistrations interface {
	ListForScope(ctx context.Context, scope models.ResultScope) ([]models.Registration, error)
}

type scopedResults interface {
	ListForScope(ctx context.Context, scope models.ResultScope) ([]models.Result, error)
	Transition(ctx context.Context, rows []models.Result, rule models.TransitionRule) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type groupFinder interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type userLister interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, recipientID, message, detail string)
}

type reportInvalidator interface {
	Invalidate(ctx context.Context, groupID string, set int) error
}

// TransitionRequest scopes a bulk transition to a cohort term and optionally one course.
type TransitionRequest struct {
	Scope   models.ResultScope
	Message string
}

// TransitionOutcome reports what a successful transition changed.
type TransitionOutcome struct {
	Transition models.Transition `json:"transition"`
	Affected   int               `json:"affected"`
	Notified   int               `json:"notified"`
}

// Refusal messages.
const (
	msgSubmitPending  = "You can't submit with pending results."
	msgApprovePending = "You can't approve with pending results."
	msgRejectPending  = "You can't reject pending results."
	msgNothingInScope = "There are no registered results in this scope."
	msgNothingToMove  = "There are no results in a state this action applies to."
	msgStale          = "Results changed while this action was running. Reload and try again."
	msgDuplicate      = "More than one result exists for the same student and course. Resolve the duplicate first."
)

// ResultLifecycleService moves result rows through the approval workflow.
type ResultLifecycleService struct {
	registrations scopedRegistrations
	results       scopedResults
	courses       courseFinder
	groups        groupFinder
	users         userLister
	notifier      notifier
	reports       reportInvalidator
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewResultLifecycleService constructs the lifecycle controller.
func NewResultLifecycleService(
	registrations scopedRegistrations,
	results scopedResults,
	courses courseFinder,
	groups groupFinder,
	users userLister,
	notifier notifier,
	reports reportInvalidator,
	metrics *MetricsService,
	logger *zap.Logger,
) *ResultLifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultLifecycleService{
		registrations: registrations,
		results:       results,
		courses:       courses,
		groups:        groups,
		users:         users,
		notifier:      notifier,
		reports:       reports,
		metrics:       metrics,
		logger:        logger,
	}
}

// Submit moves a fully submitted cohort term from lecturer-submitted to
// officer-approved and notifies every administrator.
func (s *ResultLifecycleService) Submit(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	req.Scope.CourseID = ""
	group, err := s.group(ctx, req.Scope.GroupID)
	if err != nil {
		return nil, err
	}
	rows, err := s.completeCohort(ctx, models.TransitionOfficerSubmit, req.Scope, msgSubmitPending)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, models.TransitionOfficerSubmit, req.Scope, rows); err != nil {
		return nil, err
	}

	admins, err := s.users.ListByRole(ctx, models.RoleAdministrator)
	if err != nil {
		s.logger.Warn("administrators not notified of submission", zap.Error(err))
	}
	msg := fmt.Sprintf("The results for %s in the faculty of %s have been submitted.", group.Department, group.Faculty)
	for _, admin := range admins {
		s.notifier.Notify(ctx, admin.ID, msg, req.Message)
	}
	return &TransitionOutcome{Transition: models.TransitionOfficerSubmit, Affected: len(rows), Notified: len(admins)}, nil
}

// Approve finalises an officer-approved cohort term and notifies each affected student once.
func (s *ResultLifecycleService) Approve(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	req.Scope.CourseID = ""
	group, err := s.group(ctx, req.Scope.GroupID)
	if err != nil {
		return nil, err
	}
	rows, err := s.completeCohort(ctx, models.TransitionAdminApprove, req.Scope, msgApprovePending)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, models.TransitionAdminApprove, req.Scope, rows); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("The results for %s in the faculty of %s have been approved.", group.Department, group.Faculty)
	students := distinctStudents(rows)
	for _, id := range students {
		s.notifier.Notify(ctx, id, msg, req.Message)
	}
	return &TransitionOutcome{Transition: models.TransitionAdminApprove, Affected: len(rows), Notified: len(students)}, nil
}

// OfficerReject returns one course's submitted results to the lecturer.
func (s *ResultLifecycleService) OfficerReject(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	if req.Scope.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is required")
	}
	return s.rejectCourse(ctx, models.TransitionOfficerReject, req)
}

// AdminReject sends results back to the officer. With a course in scope only that
// course moves and its lecturer is notified; otherwise the whole cohort term must
// be officer-approved and the group officer is notified.
func (s *ResultLifecycleService) AdminReject(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	if req.Scope.CourseID != "" {
		return s.rejectCourse(ctx, models.TransitionAdminReject, req)
	}

	group, err := s.group(ctx, req.Scope.GroupID)
	if err != nil {
		return nil, err
	}
	rows, err := s.completeCohort(ctx, models.TransitionAdminReject, req.Scope, msgRejectPending)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, models.TransitionAdminReject, req.Scope, rows); err != nil {
		return nil, err
	}

	notified := 0
	if group.GroupAdminID != nil {
		msg := fmt.Sprintf("The semester %d results for %s in the faculty of %s, %d set, for %d have been rejected.",
			req.Scope.Semester, group.Department, group.Faculty, req.Scope.StudentSet, req.Scope.Year)
		s.notifier.Notify(ctx, *group.GroupAdminID, msg, req.Message)
		notified = 1
	}
	return &TransitionOutcome{Transition: models.TransitionAdminReject, Affected: len(rows), Notified: notified}, nil
}

func (s *ResultLifecycleService) rejectCourse(ctx context.Context, t models.Transition, req TransitionRequest) (*TransitionOutcome, error) {
	rule, err := t.Rule()
	if err != nil {
		return nil, appErrors.Internal(err, "unknown transition")
	}
	group, err := s.group(ctx, req.Scope.GroupID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, req.Scope.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	results, err := s.results.ListForScope(ctx, req.Scope)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load results")
	}
	rows := make([]models.Result, 0, len(results))
	for _, r := range results {
		if rule.Allows(r.Status) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		s.metrics.RecordTransition(t, false)
		return nil, appErrors.Clone(appErrors.ErrStateConflict, msgNothingToMove)
	}
	if err := s.apply(ctx, t, req.Scope, rows); err != nil {
		return nil, err
	}

	notified := 0
	if course.LecturerID != nil {
		msg := fmt.Sprintf("%s results for %s %s in %d have been rejected.", course.Code, group.Faculty, group.Department, req.Scope.Year)
		s.notifier.Notify(ctx, *course.LecturerID, msg, req.Message)
		notified = 1
	}
	return &TransitionOutcome{Transition: t, Affected: len(rows), Notified: notified}, nil
}

// completeCohort returns the result row of every registration in scope, refusing
// with refusal when any registration lacks a row the transition accepts.
func (s *ResultLifecycleService) completeCohort(ctx context.Context, t models.Transition, scope models.ResultScope, refusal string) ([]models.Result, error) {
	rule, err := t.Rule()
	if err != nil {
		return nil, appErrors.Internal(err, "unknown transition")
	}
	regs, err := s.registrations.ListForScope(ctx, scope)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registrations")
	}
	if len(regs) == 0 {
		s.metrics.RecordTransition(t, false)
		return nil, appErrors.Clone(appErrors.ErrStateConflict, msgNothingInScope)
	}
	results, err := s.results.ListForScope(ctx, scope)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load results")
	}

	eligible := make(map[string]models.Result, len(results))
	for _, r := range results {
		if !rule.Allows(r.Status) {
			continue
		}
		key := r.StudentID + "|" + r.CourseID
		if prev, dup := eligible[key]; dup {
			s.metrics.RecordTransition(t, false)
			s.logger.Warn("duplicate results in scope",
				zap.String("transition", string(t)), zap.String("result_id", prev.ID), zap.String("duplicate_id", r.ID))
			return nil, appErrors.Clone(appErrors.ErrStateConflict, msgDuplicate)
		}
		eligible[key] = r
	}

	rows := make([]models.Result, 0, len(regs))
	picked := make(map[string]bool, len(regs))
	for _, reg := range regs {
		key := reg.StudentID + "|" + reg.CourseID
		r, ok := eligible[key]
		if !ok {
			s.metrics.RecordTransition(t, false)
			s.logger.Info("transition refused",
				zap.String("transition", string(t)), zap.String("student_id", reg.StudentID), zap.String("course_id", reg.CourseID))
			return nil, appErrors.Clone(appErrors.ErrStateConflict, refusal)
		}
		if picked[key] {
			continue
		}
		picked[key] = true
		rows = append(rows, r)
	}
	return rows, nil
}

func (s *ResultLifecycleService) apply(ctx context.Context, t models.Transition, scope models.ResultScope, rows []models.Result) error {
	rule, err := t.Rule()
	if err != nil {
		return appErrors.Internal(err, "unknown transition")
	}
	if err := s.results.Transition(ctx, rows, rule); err != nil {
		if errors.Is(err, repository.ErrStaleResults) {
			s.metrics.RecordTransition(t, false)
			return appErrors.Wrap(err, appErrors.ErrStateConflict.Code, appErrors.ErrStateConflict.Status, msgStale)
		}
		return appErrors.Internal(err, "failed to update results")
	}
	s.metrics.RecordTransition(t, true)
	s.logger.Info("results transitioned",
		zap.String("transition", string(t)),
		zap.String("group_id", scope.GroupID),
		zap.Int("set", scope.StudentSet),
		zap.Int("year", scope.Year),
		zap.Int("semester", scope.Semester),
		zap.Int("rows", len(rows)),
	)
	if s.reports != nil {
		if err := s.reports.Invalidate(ctx, scope.GroupID, scope.StudentSet); err != nil {
			s.logger.Warn("cached reports not invalidated", zap.Error(err))
		}
	}
	return nil
}

func (s *ResultLifecycleService) group(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Internal(err, "failed to load group")
	}
	return group, nil
}

func distinctStudents(rows []models.Result) []string {
	seen := make(map[string]bool, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if seen[r.StudentID] {
			continue
		}
		seen[r.StudentID] = true
		out = append(out, r.StudentID)
	}
	return out
}
