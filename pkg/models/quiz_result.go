package models

import "time"

// QuizResult records a finished deck quiz
type QuizResult struct {
	ID       int64     `json:"id" db:"id"`
	UserID   string    `json:"user_id" db:"user_id"`
	DeckID   string    `json:"deck_id" db:"deck_id"`
	Total    int       `json:"total" db:"total"`
	Correct  int       `json:"correct" db:"correct"`
	Passed   bool      `json:"passed" db:"passed"`
	TakenAt  time.Time `json:"taken_at" db:"taken_at"`
	Duration int       `json:"duration" db:"duration"` // Duration in seconds
}
