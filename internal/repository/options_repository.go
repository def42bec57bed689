package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// OptionsRepository persists group options and application options.
type OptionsRepository struct {
	db *sqlx.DB
}

// NewOptionsRepository constructs an OptionsRepository.
func NewOptionsRepository(db *sqlx.DB) *OptionsRepository {
	return &OptionsRepository{db: db}
}

const groupOptionsColumns = `id, group_id, student_set, grade_system, levels, reg_cap, reg_norm, reg_min, created_at, updated_at`

// FindGroupOptions returns the options for a group set or sql.ErrNoRows.
func (r *OptionsRepository) FindGroupOptions(ctx context.Context, groupID string, set int) (*models.GroupOptions, error) {
	var opts models.GroupOptions
	query := `SELECT ` + groupOptionsColumns + ` FROM group_options WHERE group_id = $1 AND student_set = $2`
	if err := r.db.GetContext(ctx, &opts, query, groupID, set); err != nil {
		return nil, err
	}
	return &opts, nil
}

// CreateGroupOptions inserts options, keeping an existing row for the same group set.
func (r *OptionsRepository) CreateGroupOptions(ctx context.Context, opts *models.GroupOptions) error {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	opts.CreatedAt = now
	opts.UpdatedAt = now
	query := `INSERT INTO group_options (` + groupOptionsColumns + `)
        VALUES (:id, :group_id, :student_set, :grade_system, :levels, :reg_cap, :reg_norm, :reg_min, :created_at, :updated_at)
        ON CONFLICT (group_id, student_set) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, opts); err != nil {
		return fmt.Errorf("create group options: %w", err)
	}
	return nil
}

// UpdateGroupOptions saves the mutable option fields.
func (r *OptionsRepository) UpdateGroupOptions(ctx context.Context, opts *models.GroupOptions) error {
	opts.UpdatedAt = time.Now().UTC()
	query := `UPDATE group_options SET grade_system = :grade_system, levels = :levels, reg_cap = :reg_cap,
        reg_norm = :reg_norm, reg_min = :reg_min, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, opts); err != nil {
		return fmt.Errorf("update group options: %w", err)
	}
	return nil
}

// GetAppOptions returns the institution-wide options or sql.ErrNoRows.
func (r *OptionsRepository) GetAppOptions(ctx context.Context) (*models.AppOptions, error) {
	var opts models.AppOptions
	if err := r.db.GetContext(ctx, &opts, `SELECT academic_year, updated_at FROM app_options ORDER BY updated_at DESC LIMIT 1`); err != nil {
		return nil, err
	}
	return &opts, nil
}
