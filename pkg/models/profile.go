package models

import "time"

// Profile represents a learner enrolled in one learning domain
type Profile struct {
	ID               string    `json:"id" db:"id"`
	TelegramID       *int64    `json:"telegram_id,omitempty" db:"telegram_id"`
	Username         string    `json:"username" db:"username"`
	DomainID         string    `json:"domain_id" db:"domain_id"`
	NotificationHour int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
