package service

import (
	"context"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/grading"
)

type bindingReader interface {
	ListBindings(ctx context.Context, filter models.BindingFilter) ([]models.CourseBinding, error)
}

// HistoryAggregator rebuilds a student's cumulative standing from every course
// bound to the cohort up to a cutoff term.
type HistoryAggregator struct {
	bindings bindingReader
	resolver *RegistrationResolver
	scales   scaleSource
}

// NewHistoryAggregator constructs a HistoryAggregator.
func NewHistoryAggregator(bindings bindingReader, resolver *RegistrationResolver, scales scaleSource) *HistoryAggregator {
	return &HistoryAggregator{bindings: bindings, resolver: resolver, scales: scales}
}

// LevelFor is the course level a cohort sits in year given the base academic year.
func LevelFor(baseYear, year int) int {
	return (baseYear - year + 1) * 100
}

// CumulativeCourses filters bindings to courses at or below level, dropping
// courses at level itself whose semester is after the cutoff semester.
func CumulativeCourses(bindings []models.CourseBinding, level, semester int) []models.CourseBinding {
	out := make([]models.CourseBinding, 0, len(bindings))
	for _, b := range bindings {
		if b.Course.Level > level {
			continue
		}
		if b.Course.Level == level && b.Course.Semester > semester {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Aggregate sums every cohort course the student has registered up to cutoff,
// counting the first passing attempt of each course once. Core courses never
// registered or never passed are returned as remarks.
func (h *HistoryAggregator) Aggregate(ctx context.Context, student models.Student, cutoff Term, baseYear int, statuses []models.ResultStatus) (models.HistoryResult, error) {
	bindings, err := h.bindings.ListBindings(ctx, models.BindingFilter{GroupID: student.GroupID, StudentSet: student.StudentSet})
	if err != nil {
		return models.HistoryResult{}, appErrors.Internal(err, "failed to load cohort courses")
	}
	bindings = CumulativeCourses(bindings, LevelFor(baseYear, cutoff.Year), cutoff.Semester)

	scale, configured, err := h.scales.ScaleFor(ctx, student.GroupID, student.StudentSet)
	if err != nil {
		return models.HistoryResult{}, err
	}

	out := models.HistoryResult{Remarks: []string{}}
	counted := make(map[string]bool, len(bindings))
	for _, binding := range bindings {
		course := binding.Course
		if counted[course.ID] {
			continue
		}
		counted[course.ID] = true
		core := binding.CourseType == models.CourseTypeCore

		regs, err := h.resolver.History(ctx, student.ID, course, cutoff)
		if err != nil {
			return models.HistoryResult{}, err
		}
		if len(regs) == 0 {
			if core {
				out.Remarks = append(out.Remarks, course.Code)
			}
			continue
		}
		out.Totals.TCR += course.Units

		if !configured {
			continue
		}
		attempts, err := h.resolver.Attempts(ctx, student.ID, course, cutoff, statuses)
		if err != nil {
			return models.HistoryResult{}, err
		}
		passed := false
		for _, attempt := range attempts {
			mapped := scale.Map(attempt.Total())
			if grading.IsFail(mapped.Grade) {
				continue
			}
			out.Totals.TCE += course.Units
			out.Totals.TGP += mapped.Points * float64(course.Units)
			passed = true
			break
		}
		if !passed && core {
			out.Remarks = append(out.Remarks, course.Code)
		}
	}
	return out, nil
}
