package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, matric, name, group_id, student_set, entry_year, active, created_at`

// ListByCohort returns the students of a group set who had entered by the filter year,
// in enrolment order.
func (r *StudentRepository) ListByCohort(ctx context.Context, filter models.CohortFilter) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE group_id = $1 AND student_set = $2 AND entry_year <= $3 ORDER BY created_at ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, filter.GroupID, filter.StudentSet, filter.Year); err != nil {
		return nil, fmt.Errorf("list cohort students: %w", err)
	}
	return students, nil
}

