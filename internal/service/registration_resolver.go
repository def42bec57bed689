package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
)

type registrationReader interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
}

type resultReader interface {
	FindOne(ctx context.Context, studentID, courseID string, year int, statuses []models.ResultStatus) (*models.Result, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID string, statuses []models.ResultStatus) ([]models.Result, error)
}

// Term is an academic year and semester.
type Term struct {
	Year     int
	Semester int
}

// Covers reports whether a year, for a course offered in semester, falls on or
// before the term.
func (t Term) Covers(year, semester int) bool {
	return year < t.Year || (year == t.Year && semester <= t.Semester)
}

// Resolution classifies one course for a student in a year.
type Resolution int

const (
	NotRegistered Resolution = iota
	Pending
	Resulted
)

// CourseResolution is the resolver's answer for one course.
type CourseResolution struct {
	Course models.Course
	State  Resolution
	Result *models.Result
}

// RegistrationResolver decides whether each course was dropped, pending or resulted.
type RegistrationResolver struct {
	registrations registrationReader
	results       resultReader
}

// NewRegistrationResolver constructs a resolver.
func NewRegistrationResolver(registrations registrationReader, results resultReader) *RegistrationResolver {
	return &RegistrationResolver{registrations: registrations, results: results}
}

// Registered returns the active registrations of a student for a term.
func (r *RegistrationResolver) Registered(ctx context.Context, studentID string, term Term) ([]models.Registration, error) {
	active := true
	regs, err := r.registrations.List(ctx, models.RegistrationFilter{
		StudentID:  studentID,
		Year:       term.Year,
		Semester:   term.Semester,
		Registered: &active,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registrations")
	}
	return regs, nil
}

// Resolve classifies courses against the student's registrations for year. Only
// results whose status is in statuses count; anything else leaves the course pending.
func (r *RegistrationResolver) Resolve(ctx context.Context, studentID string, courses []models.Course, registered []models.Registration, year int, statuses []models.ResultStatus) ([]CourseResolution, error) {
	active := make(map[string]bool, len(registered))
	for _, reg := range registered {
		if reg.RegStatus && reg.YearRegistered == year {
			active[reg.CourseID] = true
		}
	}

	out := make([]CourseResolution, 0, len(courses))
	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !active[course.ID] {
			out = append(out, CourseResolution{Course: course, State: NotRegistered})
			continue
		}
		result, err := r.results.FindOne(ctx, studentID, course.ID, year, statuses)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				out = append(out, CourseResolution{Course: course, State: Pending})
				continue
			}
			return nil, appErrors.Internal(err, "failed to load result")
		}
		out = append(out, CourseResolution{Course: course, State: Resulted, Result: result})
	}
	return out, nil
}

// History returns the active registrations of a course by a student up to the cutoff term.
func (r *RegistrationResolver) History(ctx context.Context, studentID string, course models.Course, cutoff Term) ([]models.Registration, error) {
	active := true
	regs, err := r.registrations.List(ctx, models.RegistrationFilter{StudentID: studentID, CourseID: course.ID, Registered: &active})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registration history")
	}
	kept := make([]models.Registration, 0, len(regs))
	for _, reg := range regs {
		if cutoff.Covers(reg.YearRegistered, course.Semester) {
			kept = append(kept, reg)
		}
	}
	return kept, nil
}

// Attempts returns the results of a course by a student up to the cutoff term, oldest first.
func (r *RegistrationResolver) Attempts(ctx context.Context, studentID string, course models.Course, cutoff Term, statuses []models.ResultStatus) ([]models.Result, error) {
	results, err := r.results.ListByStudentCourse(ctx, studentID, course.ID, statuses)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load result history")
	}
	kept := make([]models.Result, 0, len(results))
	for _, res := range results {
		if cutoff.Covers(res.YearSubmitted, course.Semester) {
			kept = append(kept, res)
		}
	}
	return kept, nil
}
