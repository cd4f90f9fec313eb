package app

import (
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/pkg/models"
)

type achievementRule struct {
	models.Achievement
	met func(st *progression.Store) bool
}

var achievementRules = []achievementRule{
	{
		Achievement: models.Achievement{ID: "first-case", Name: "First Diagnosis", Description: "Completed your first patient case", XPReward: 50},
		met:         func(st *progression.Store) bool { return st.CompletedCount(models.KindCase) >= 1 },
	},
	{
		Achievement: models.Achievement{ID: "case-master", Name: "Case Master", Description: "Completed 5 patient cases", XPReward: 250},
		met:         func(st *progression.Store) bool { return st.CompletedCount(models.KindCase) >= 5 },
	},
	{
		Achievement: models.Achievement{ID: "battle-victor", Name: "Battle Victor", Description: "Won your first MedBattle", XPReward: 100},
		met:         func(st *progression.Store) bool { return st.CompletedCount(models.KindBattle) >= 1 },
	},
	{
		Achievement: models.Achievement{ID: "streak-warrior", Name: "Study Warrior", Description: "7-day study streak achieved", XPReward: 150},
		met:         func(st *progression.Store) bool { return st.Streak() >= 7 },
	},
	{
		Achievement: models.Achievement{ID: "flashcard-hero", Name: "Flashcard Hero", Description: "Mastered 10 flashcards", XPReward: 200},
		met:         func(st *progression.Store) bool { return st.CompletedCount(models.KindCard) >= 10 },
	},
	{
		Achievement: models.Achievement{ID: "rank-resident", Name: "Residency", Description: "Reached the rank of Resident", XPReward: 300},
		met: func(st *progression.Store) bool {
			l := st.Ladder()
			want := l.Index(progression.RankResident)
			return want >= 0 && l.Index(st.Rank()) >= want
		},
	},
}

// Achievements returns every achievement that can be unlocked
func Achievements() []models.Achievement {
	out := make([]models.Achievement, len(achievementRules))
	for i, r := range achievementRules {
		out[i] = r.Achievement
	}
	return out
}

// unlockAchievements completes every achievement whose rule holds. Rewards can
// push the learner over another threshold, so it runs until nothing new unlocks.
func unlockAchievements(st *progression.Store) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	for {
		progressed := false
		for _, r := range achievementRules {
			key := models.AchievementItemID(r.ID)
			if st.IsCompleted(key) || !r.met(st) {
				continue
			}
			if _, err := st.CompleteItem(key, r.XPReward); err != nil {
				return unlocked, err
			}
			unlocked = append(unlocked, r.Achievement)
			progressed = true
		}
		if !progressed {
			return unlocked, nil
		}
	}
}

func unlockedAchievements(snap models.ProgressionSnapshot) []models.Achievement {
	var out []models.Achievement
	for _, r := range achievementRules {
		if snap.HasCompleted(models.AchievementItemID(r.ID)) {
			out = append(out, r.Achievement)
		}
	}
	return out
}
