package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// ErrStaleResults signals that a bulk transition found a row changed since it was read.
var ErrStaleResults = errors.New("results changed during transition")

// ResultRepository persists course results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `res.id, res.student_id, res.course_id, res.year_submitted, res.ca_1, res.ca_2, res.ca_3, res.exam, res.result_status, res.version`

func statusList(args []interface{}, statuses []models.ResultStatus) ([]interface{}, string) {
	holders := make([]string, len(statuses))
	for i, status := range statuses {
		args = append(args, int(status))
		holders[i] = fmt.Sprintf("$%d", len(args))
	}
	return args, strings.Join(holders, ", ")
}

// FindOne returns the result for a student, course and year whose status is in statuses.
// It returns sql.ErrNoRows when none matches.
func (r *ResultRepository) FindOne(ctx context.Context, studentID, courseID string, year int, statuses []models.ResultStatus) (*models.Result, error) {
	args, in := statusList([]interface{}{studentID, courseID, year}, statuses)
	query := fmt.Sprintf(`SELECT %s FROM results res WHERE res.student_id = $1 AND res.course_id = $2 AND res.year_submitted = $3 AND res.result_status IN (%s) ORDER BY res.id LIMIT 1`, resultColumns, in)
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByStudentCourse returns every attempt of a course by a student whose status
// is in statuses, oldest first.
func (r *ResultRepository) ListByStudentCourse(ctx context.Context, studentID, courseID string, statuses []models.ResultStatus) ([]models.Result, error) {
	args, in := statusList([]interface{}{studentID, courseID}, statuses)
	query := fmt.Sprintf(`SELECT %s FROM results res WHERE res.student_id = $1 AND res.course_id = $2 AND res.result_status IN (%s) ORDER BY res.year_submitted ASC, res.id ASC`, resultColumns, in)
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list student course results: %w", err)
	}
	return results, nil
}

// ListForScope returns the results of a cohort term in any state.
func (r *ResultRepository) ListForScope(ctx context.Context, scope models.ResultScope) ([]models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results res
        JOIN students s ON s.id = res.student_id
        JOIN courses c ON c.id = res.course_id
        WHERE s.group_id = $1 AND s.student_set = $2 AND s.entry_year <= $3
        AND res.year_submitted = $3 AND c.semester = $4`
	args := []interface{}{scope.GroupID, scope.StudentSet, scope.Year, scope.Semester}
	if scope.CourseID != "" {
		query += " AND res.course_id = $5"
		args = append(args, scope.CourseID)
	}
	query += " ORDER BY res.student_id ASC, res.course_id ASC"

	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list scoped results: %w", err)
	}
	return results, nil
}

// Transition moves every row to the target state in one transaction. Each update
// is guarded by the version and state the row was read with; if any row no longer
// matches, nothing is written and ErrStaleResults is returned.
func (r *ResultRepository) Transition(ctx context.Context, rows []models.Result, rule models.TransitionRule) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin result transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	args, in := statusList([]interface{}{int(rule.To), "", 0}, rule.From)
	query := fmt.Sprintf(`UPDATE results SET result_status = $1, version = version + 1, updated_at = NOW() WHERE id = $2 AND version = $3 AND result_status IN (%s)`, in)
	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare result transition: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args[1], args[2] = row.ID, row.Version
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("transition result %s: %w", row.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("transition result %s: %w", row.ID, err)
		}
		if affected != 1 {
			return fmt.Errorf("result %s: %w", row.ID, ErrStaleResults)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result transition: %w", err)
	}
	return nil
}
