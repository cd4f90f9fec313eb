package models

// ProgressionSnapshot is the serialized form of a learner's progression.
// Level and Rank are informational: they are recomputed from TotalXP on restore.
type ProgressionSnapshot struct {
	UserID         string         `json:"user_id,omitempty"`
	TotalXP        int            `json:"total_xp"`
	Level          int            `json:"level"`
	Rank           string         `json:"rank"`
	XPToNextLevel  int            `json:"xp_to_next_level"`
	Streak         int            `json:"streak"`
	CompletedItems []string       `json:"completed_items"`
	SkillPoints    map[string]int `json:"skill_points,omitempty"`
}

// HasCompleted reports whether itemID is in the completed set
func (s ProgressionSnapshot) HasCompleted(itemID string) bool {
	for _, id := range s.CompletedItems {
		if id == itemID {
			return true
		}
	}
	return false
}
