package database

import (
	"context"
	"fmt"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

// QuizResultRepository handles database operations for quiz results
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a quiz result
func (r *QuizResultRepository) Create(ctx context.Context, res *models.QuizResult) error {
	if res.TakenAt.IsZero() {
		res.TakenAt = timeNow().UTC()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO quiz_results (user_id, deck_id, total, correct, passed, taken_at, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		res.UserID, res.DeckID, res.Total, res.Correct, res.Passed, res.TakenAt, res.Duration)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// GetByUser returns the quiz history of a profile, newest first
func (r *QuizResultRepository) GetByUser(ctx context.Context, userID string, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := r.db.Rebind(`
		SELECT id, user_id, deck_id, total, correct, passed, taken_at, duration
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &results, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}
