package models

import "time"

// CardProgress tracks a profile's SM-2 review state for one flashcard
type CardProgress struct {
	UserID         string     `json:"user_id" db:"user_id"`
	CardID         string     `json:"card_id" db:"card_id"`
	EasinessFactor float64    `json:"easiness_factor" db:"easiness_factor"`
	Interval       int        `json:"interval" db:"interval_days"` // Current interval in days
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	LastQuality    int        `json:"last_quality" db:"last_quality"` // 0-5 rating of last recall
	LastReviewAt   *time.Time `json:"last_review_at" db:"last_review_at"`
	NextReviewAt   time.Time  `json:"next_review_at" db:"next_review_at"`
}

// NewCardProgress returns a never-reviewed progress record due immediately
func NewCardProgress(userID, cardID string, now time.Time) *CardProgress {
	return &CardProgress{
		UserID:         userID,
		CardID:         cardID,
		EasinessFactor: 2.5,
		Interval:       0,
		NextReviewAt:   now,
	}
}
