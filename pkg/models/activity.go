package models

// Activity is the day-boundary bookkeeping used to maintain streaks
type Activity struct {
	UserID        string `json:"user_id" db:"user_id"`
	LastActiveDay string `json:"last_active_day" db:"last_active_day"` // YYYY-MM-DD in the configured location
}

// Achievement is a one-time reward unlocked by a progression milestone
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
}
