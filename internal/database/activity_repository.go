package database

import (
	"context"
	"fmt"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ActivityRepository keeps the last active day of each profile
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new repository instance
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Get returns the activity record of a profile, or ErrNotFound
func (r *ActivityRepository) Get(ctx context.Context, userID string) (*models.Activity, error) {
	var a models.Activity
	query := r.db.Rebind(`SELECT user_id, last_active_day FROM activity WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &a, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", notFound(err))
	}
	return &a, nil
}

// Touch records day as the last active day of a profile
func (r *ActivityRepository) Touch(ctx context.Context, userID, day string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO activity (user_id, last_active_day) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_active_day = excluded.last_active_day`),
		userID, day)
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// List returns all activity records
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var list []models.Activity
	if err := r.db.SelectContext(ctx, &list, `SELECT user_id, last_active_day FROM activity ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return list, nil
}

// Delete removes the activity record of a profile
func (r *ActivityRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM activity WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}
