package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// CourseRepository reads courses and their cohort bindings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	query := `SELECT id, code, title, units, semester, level, group_id, lecturer_id, active FROM courses WHERE id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListBindings returns the active course bindings of a cohort joined with their
// courses, in the order they were bound. An empty CourseType returns both kinds.
func (r *CourseRepository) ListBindings(ctx context.Context, filter models.BindingFilter) ([]models.CourseBinding, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT gc.id, gc.group_id, gc.student_set, gc.course_type, gc.active,
        c.id AS "course.id", c.code AS "course.code", c.title AS "course.title", c.units AS "course.units",
        c.semester AS "course.semester", c.level AS "course.level", c.group_id AS "course.group_id",
        c.lecturer_id AS "course.lecturer_id", c.active AS "course.active"
        FROM group_courses gc JOIN courses c ON c.id = gc.course_id
        WHERE gc.group_id = $1 AND gc.student_set = $2 AND gc.active = TRUE`)
	args := []interface{}{filter.GroupID, filter.StudentSet}
	if filter.CourseType != "" {
		args = append(args, filter.CourseType)
		sb.WriteString(fmt.Sprintf(" AND gc.course_type = $%d", len(args)))
	}
	sb.WriteString(" ORDER BY gc.created_at ASC, gc.id ASC")

	var bindings []models.CourseBinding
	if err := r.db.SelectContext(ctx, &bindings, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list course bindings: %w", err)
	}
	return bindings, nil
}
