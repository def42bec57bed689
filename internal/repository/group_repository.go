package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// GroupRepository reads institutional groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID fetches a group.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	query := `SELECT id, faculty, department, group_admin_id, active, created_at FROM groups WHERE id = $1`
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByAdmin returns the active groups assigned to an officer.
func (r *GroupRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Group, error) {
	var groups []models.Group
	query := `SELECT id, faculty, department, group_admin_id, active, created_at FROM groups WHERE group_admin_id = $1 AND active = TRUE ORDER BY faculty, department`
	if err := r.db.SelectContext(ctx, &groups, query, adminID); err != nil {
		return nil, fmt.Errorf("list groups by admin: %w", err)
	}
	return groups, nil
}
