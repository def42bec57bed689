package service

import (
	"context"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/pkg/grading"
)

type scaleSource interface {
	ScaleFor(ctx context.Context, groupID string, set int) (grading.Scale, bool, error)
}

// TermAggregator builds a student's course rows and totals for one term.
type TermAggregator struct {
	resolver *RegistrationResolver
	scales   scaleSource
}

// NewTermAggregator constructs a TermAggregator.
func NewTermAggregator(resolver *RegistrationResolver, scales scaleSource) *TermAggregator {
	return &TermAggregator{resolver: resolver, scales: scales}
}

// Aggregate rates courses for the student. registered must hold the student's
// active registrations for the term; with none, the rows collapse to a placeholder.
func (a *TermAggregator) Aggregate(ctx context.Context, student models.Student, courses []models.Course, registered []models.Registration, term Term, statuses []models.ResultStatus) (models.TermResult, error) {
	if len(registered) == 0 {
		return models.TermResult{Rows: models.NoRegistration(models.MessageNoCourses)}, nil
	}
	resolutions, err := a.resolver.Resolve(ctx, student.ID, courses, registered, term.Year, statuses)
	if err != nil {
		return models.TermResult{}, err
	}
	return a.rate(ctx, student, resolutions)
}

// Carryovers rates the student's term registrations that are not part of the
// cohort's current course lists.
func (a *TermAggregator) Carryovers(ctx context.Context, student models.Student, current []models.Course, registered []models.Registration, term Term, statuses []models.ResultStatus) (models.TermResult, error) {
	listed := make(map[string]bool, len(current))
	for _, c := range current {
		listed[c.ID] = true
	}

	seen := map[string]bool{}
	var others []models.Course
	for _, reg := range registered {
		if listed[reg.CourseID] || seen[reg.CourseID] {
			continue
		}
		seen[reg.CourseID] = true
		others = append(others, models.Course{ID: reg.CourseID, Code: reg.CourseCode, Units: reg.Units, Semester: reg.Semester})
	}
	if len(others) == 0 {
		return models.TermResult{Rows: models.NoRegistration(models.MessageNoCarryovers)}, nil
	}

	resolutions, err := a.resolver.Resolve(ctx, student.ID, others, registered, term.Year, statuses)
	if err != nil {
		return models.TermResult{}, err
	}
	return a.rate(ctx, student, resolutions)
}

func (a *TermAggregator) rate(ctx context.Context, student models.Student, resolutions []CourseResolution) (models.TermResult, error) {
	var (
		scale      grading.Scale
		configured bool
		loaded     bool
	)
	rows := make([]models.CourseRow, 0, len(resolutions))
	var totals models.TermTotals

	for _, res := range resolutions {
		row := models.CourseRow{Course: res.Course.Code, Units: res.Course.Units}
		switch res.State {
		case NotRegistered:
			row.Remark = models.RemarkDropped
		case Pending:
			totals.TCR += res.Course.Units
			row.Remark = models.RemarkPending
		case Resulted:
			totals.TCR += res.Course.Units
			row.Score = res.Result.Total()
			row.Exam = res.Result.Exam
			row.FirstCA = res.Result.CA1
			row.SecondCA = res.Result.CA2
			row.ThirdCA = res.Result.CA3

			if !loaded {
				var err error
				scale, configured, err = a.scales.ScaleFor(ctx, student.GroupID, student.StudentSet)
				if err != nil {
					return models.TermResult{}, err
				}
				loaded = true
			}
			if !configured {
				row.Remark = models.RemarkUnconfigured
				break
			}

			mapped := scale.Map(row.Score)
			grade := mapped.Grade
			row.Grade = &grade
			row.Points = mapped.Points
			if grading.IsFail(grade) {
				row.Remark = models.RemarkFailed
			} else {
				row.Remark = models.RemarkPassed
				totals.TCE += res.Course.Units
			}
			totals.TGP += mapped.Points * float64(res.Course.Units)
		}
		rows = append(rows, row)
	}
	return models.TermResult{Rows: models.RowsOf(rows), Totals: totals}, nil
}
