package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

const cardProgressColumns = "user_id, card_id, easiness_factor, interval_days, repetitions, last_quality, last_review_at, next_review_at"

// CardProgressRepository stores spaced repetition state per profile and card
type CardProgressRepository struct {
	db *sqlx.DB
}

// NewCardProgressRepository creates a new repository instance
func NewCardProgressRepository(db *sqlx.DB) *CardProgressRepository {
	return &CardProgressRepository{db: db}
}

// Get returns the review state of one card, or ErrNotFound
func (r *CardProgressRepository) Get(ctx context.Context, userID, cardID string) (*models.CardProgress, error) {
	var p models.CardProgress
	query := r.db.Rebind(`SELECT ` + cardProgressColumns + ` FROM card_progress WHERE user_id = ? AND card_id = ?`)
	if err := r.db.GetContext(ctx, &p, query, userID, cardID); err != nil {
		return nil, fmt.Errorf("failed to get card progress: %w", notFound(err))
	}
	return &p, nil
}

// Save inserts or updates the review state of one card
func (r *CardProgressRepository) Save(ctx context.Context, p *models.CardProgress) error {
	// Stored in UTC so due-date comparisons order correctly on sqlite
	var lastReview *time.Time
	if p.LastReviewAt != nil {
		t := p.LastReviewAt.UTC()
		lastReview = &t
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO card_progress (`+cardProgressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			easiness_factor = excluded.easiness_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			last_quality = excluded.last_quality,
			last_review_at = excluded.last_review_at,
			next_review_at = excluded.next_review_at`),
		p.UserID, p.CardID, p.EasinessFactor, p.Interval, p.Repetitions,
		p.LastQuality, lastReview, p.NextReviewAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save card progress: %w", err)
	}
	return nil
}

// ListByUser returns every tracked card of a profile, soonest due first
func (r *CardProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.CardProgress, error) {
	var list []models.CardProgress
	query := r.db.Rebind(`SELECT ` + cardProgressColumns + ` FROM card_progress WHERE user_id = ? ORDER BY next_review_at, card_id`)
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list card progress: %w", err)
	}
	return list, nil
}

// ListDue returns the cards of a profile due at or before now
func (r *CardProgressRepository) ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]models.CardProgress, error) {
	var list []models.CardProgress
	query := r.db.Rebind(`
		SELECT ` + cardProgressColumns + ` FROM card_progress
		WHERE user_id = ? AND next_review_at <= ?
		ORDER BY next_review_at, card_id
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &list, query, userID, now.UTC(), limit); err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	return list, nil
}

// CountDue counts the cards of a profile due at or before now
func (r *CardProgressRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM card_progress WHERE user_id = ? AND next_review_at <= ?`)
	if err := r.db.GetContext(ctx, &n, query, userID, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return n, nil
}

// DeleteByUser forgets every review state of a profile
func (r *CardProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM card_progress WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete card progress: %w", err)
	}
	return nil
}
