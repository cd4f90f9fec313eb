package database

import (
	"context"
	"fmt"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressionRepository persists progression snapshots
type ProgressionRepository struct {
	db *sqlx.DB
}

// NewProgressionRepository creates a new repository instance
func NewProgressionRepository(db *sqlx.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// Load returns the stored snapshot of a user, or ErrNotFound.
// Level and rank are left for the caller to derive.
func (r *ProgressionRepository) Load(ctx context.Context, userID string) (*models.ProgressionSnapshot, error) {
	var row struct {
		TotalXP int `db:"total_xp"`
		Streak  int `db:"streak"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT total_xp, streak FROM progression WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progression for %s: %w", userID, notFound(err))
	}

	snap := &models.ProgressionSnapshot{
		UserID:         userID,
		TotalXP:        row.TotalXP,
		Streak:         row.Streak,
		CompletedItems: []string{},
	}

	err = r.db.SelectContext(ctx, &snap.CompletedItems,
		r.db.Rebind(`SELECT item_id FROM completed_items WHERE user_id = ? ORDER BY item_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed items: %w", err)
	}

	var skills []struct {
		Skill  string `db:"skill"`
		Points int    `db:"points"`
	}
	err = r.db.SelectContext(ctx, &skills,
		r.db.Rebind(`SELECT skill, points FROM skill_points WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill points: %w", err)
	}
	if len(skills) > 0 {
		snap.SkillPoints = make(map[string]int, len(skills))
		for _, s := range skills {
			snap.SkillPoints[s.Skill] = s.Points
		}
	}

	return snap, nil
}

// Save replaces the stored state with snap in one transaction. Items that stay
// completed keep their original completion time.
func (r *ProgressionRepository) Save(ctx context.Context, userID string, snap models.ProgressionSnapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := timeNow().UTC()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO progression (user_id, total_xp, streak, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			total_xp = excluded.total_xp,
			streak = excluded.streak,
			updated_at = excluded.updated_at`),
		userID, snap.TotalXP, snap.Streak, now)
	if err != nil {
		return fmt.Errorf("failed to save progression: %w", err)
	}

	query, args := `DELETE FROM completed_items WHERE user_id = ?`, []interface{}{userID}
	if len(snap.CompletedItems) > 0 {
		query, args, err = sqlx.In(`DELETE FROM completed_items WHERE user_id = ? AND item_id NOT IN (?)`,
			userID, snap.CompletedItems)
		if err != nil {
			return fmt.Errorf("failed to build completed items query: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to clear completed items: %w", err)
	}
	insertItem := tx.Rebind(`
		INSERT INTO completed_items (user_id, item_id, completed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, item_id) DO NOTHING`)
	for _, itemID := range snap.CompletedItems {
		if _, err := tx.ExecContext(ctx, insertItem, userID, itemID, now); err != nil {
			return fmt.Errorf("failed to save completed item %s: %w", itemID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM skill_points WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to clear skill points: %w", err)
	}
	insertSkill := tx.Rebind(`INSERT INTO skill_points (user_id, skill, points) VALUES (?, ?, ?)`)
	for skill, points := range snap.SkillPoints {
		if _, err := tx.ExecContext(ctx, insertSkill, userID, skill, points); err != nil {
			return fmt.Errorf("failed to save skill points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progression: %w", err)
	}
	return nil
}

// Delete removes every progression row of a user
func (r *ProgressionRepository) Delete(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"completed_items", "skill_points", "progression"} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// CountCompleted counts items a user completed whose id starts with prefix
func (r *ProgressionRepository) CountCompleted(ctx context.Context, userID, prefix string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM completed_items WHERE user_id = ? AND item_id LIKE ?`),
		userID, prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to count completed items: %w", err)
	}
	return n, nil
}
