package database

import (
	"context"
	"fmt"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

const profileColumns = "id, telegram_id, username, domain_id, notification_hour, created_at, updated_at"

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new repository instance
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	now := timeNow().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.TelegramID, p.Username, p.DomainID, p.NotificationHour, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update modifies the mutable profile fields
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = timeNow().UTC()

	query := r.db.Rebind(`
		UPDATE profiles SET
			username = ?,
			domain_id = ?,
			notification_hour = ?,
			updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, p.Username, p.DomainID, p.NotificationHour, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	query := r.db.Rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`)
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, notFound(err))
	}
	return &p, nil
}

// GetByTelegramID returns the profile linked to a Telegram account
func (r *ProfileRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	var p models.Profile
	query := r.db.Rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE telegram_id = ?`)
	if err := r.db.GetContext(ctx, &p, query, telegramID); err != nil {
		return nil, fmt.Errorf("failed to get profile by telegram id: %w", notFound(err))
	}
	return &p, nil
}

// GetAll returns all profiles, oldest first
func (r *ProfileRepository) GetAll(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a profile and, through cascades, everything it owns
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM profiles WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
