package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// RegistrationRepository reads course registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationSelect = `SELECT r.id, r.student_id, r.course_id, r.year_registered, r.reg_status, c.code AS course_code, c.semester, c.units
        FROM course_registrations r JOIN courses c ON c.id = r.course_id`

// List returns registrations matching the filter ordered by year.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.StudentID != "" {
		add("r.student_id = $%d", filter.StudentID)
	}
	if filter.CourseID != "" {
		add("r.course_id = $%d", filter.CourseID)
	}
	if filter.Year > 0 {
		add("r.year_registered = $%d", filter.Year)
	}
	if filter.Semester > 0 {
		add("c.semester = $%d", filter.Semester)
	}
	if filter.Registered != nil {
		add("r.reg_status = $%d", *filter.Registered)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY r.year_registered ASC, r.id ASC", registrationSelect, strings.Join(conditions, " AND "))
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListForScope returns the active registrations of every student in a cohort for
// the scoped year and semester, optionally restricted to one course.
func (r *RegistrationRepository) ListForScope(ctx context.Context, scope models.ResultScope) ([]models.Registration, error) {
	query := registrationSelect + ` JOIN students s ON s.id = r.student_id
        WHERE s.group_id = $1 AND s.student_set = $2 AND s.entry_year <= $3
        AND r.year_registered = $3 AND c.semester = $4 AND r.reg_status = TRUE`
	args := []interface{}{scope.GroupID, scope.StudentSet, scope.Year, scope.Semester}
	if scope.CourseID != "" {
		query += " AND r.course_id = $5"
		args = append(args, scope.CourseID)
	}
	query += " ORDER BY r.student_id ASC, r.course_id ASC"

	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list scoped registrations: %w", err)
	}
	return regs, nil
}
