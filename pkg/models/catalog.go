package models

import "strings"

// ItemKind is the kind of learning unit that yields XP on completion
type ItemKind string

const (
	KindCase        ItemKind = "case"
	KindDeck        ItemKind = "deck"
	KindBattle      ItemKind = "battle"
	KindQuest       ItemKind = "quest"
	KindCard        ItemKind = "card"
	KindAchievement ItemKind = "achievement"
)

// Difficulty of a catalog item
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Order returns a sortable weight for the difficulty
func (d Difficulty) Order() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	}
	return 0
}

// ParseDifficulty parses a difficulty name, falling back to beginner
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyIntermediate:
		return DifficultyIntermediate
	case DifficultyAdvanced:
		return DifficultyAdvanced
	}
	return DifficultyBeginner
}

// CatalogItem is a completable learning unit (patient case, flashcard deck, battle, quest)
type CatalogItem struct {
	ID            string     `json:"id" db:"id"`
	Kind          ItemKind   `json:"kind" db:"kind"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	DomainID      string     `json:"domain_id" db:"domain_id"`
	Difficulty    Difficulty `json:"difficulty" db:"difficulty"`
	XPReward      int        `json:"xp_reward" db:"xp_reward"`
	EstimatedTime int        `json:"estimated_time" db:"estimated_time"` // Minutes
	Skills        []string   `json:"skills" db:"-"`
}

// Flashcard is a single question/answer card belonging to a deck
type Flashcard struct {
	ID                string `json:"id" db:"id"`
	DeckID            string `json:"deck_id" db:"deck_id"`
	Question          string `json:"question" db:"question"`
	Answer            string `json:"answer" db:"answer"`
	ClinicalRelevance string `json:"clinical_relevance" db:"clinical_relevance"`
}

// ItemKey is the completed-item identifier of the catalog item
func (i CatalogItem) ItemKey() string {
	return string(i.Kind) + ":" + i.ID
}

// CardItemID is the completed-item identifier of a mastered flashcard
func CardItemID(cardID string) string {
	return string(KindCard) + ":" + cardID
}

// AchievementItemID is the completed-item identifier of an unlocked achievement
func AchievementItemID(achievementID string) string {
	return string(KindAchievement) + ":" + achievementID
}
