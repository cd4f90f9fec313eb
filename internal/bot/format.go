package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/pkg/models"
)

// progressBar renders the progress through the current level
func progressBar(totalXP int) string {
	done := (totalXP % progression.XPPerLevel) * 10 / progression.XPPerLevel
	return strings.Repeat("▰", done) + strings.Repeat("▱", 10-done)
}

func formatStatus(st *app.Status) string {
	p := st.Progress
	var sb strings.Builder
	sb.WriteString("📊 *Your progress*\n\n")
	if st.Domain.ID != "" {
		sb.WriteString(fmt.Sprintf("🩺 Domain: %s\n", st.Domain.Name))
	}
	sb.WriteString(fmt.Sprintf("🏅 Rank: %s\n", p.Rank))
	sb.WriteString(fmt.Sprintf("⭐ Level %d  %s\n", p.Level, progressBar(p.TotalXP)))
	sb.WriteString(fmt.Sprintf("✨ %d XP (%d to next level)\n", p.TotalXP, p.XPToNextLevel))
	sb.WriteString(fmt.Sprintf("🔥 Streak: %s\n", plural(p.Streak, "day", "days")))
	sb.WriteString(fmt.Sprintf("✅ Completed: %s\n", plural(completedLearningItems(p.CompletedItems), "item", "items")))
	if st.DueCards > 0 {
		sb.WriteString(fmt.Sprintf("🗂 %s due for review\n", plural(st.DueCards, "card", "cards")))
	}

	if len(p.SkillPoints) > 0 {
		sb.WriteString("\n*Skills*\n")
		for _, skill := range sortedKeys(p.SkillPoints) {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", skill, p.SkillPoints[skill]))
		}
	}
	if len(st.Achievements) > 0 {
		sb.WriteString("\n*Achievements*\n")
		for _, a := range st.Achievements {
			sb.WriteString(fmt.Sprintf("🏆 %s\n", a.Name))
		}
	}
	return sb.String()
}

// completedLearningItems counts completed items that are not achievements
func completedLearningItems(items []string) int {
	prefix := string(models.KindAchievement) + ":"
	n := 0
	for _, id := range items {
		if !strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n
}

func formatOutcome(title string, out app.Outcome) string {
	a := out.Award
	var sb strings.Builder
	switch {
	case !a.Granted:
		sb.WriteString(fmt.Sprintf("☑️ *%s* was already completed.\n", title))
	case a.Amount > 0:
		sb.WriteString(fmt.Sprintf("✅ Completed *%s*: +%d XP\n", title, a.Amount))
	default:
		sb.WriteString(fmt.Sprintf("✅ Completed *%s*\n", title))
	}
	sb.WriteString(fmt.Sprintf("✨ %d XP · Level %d · %s\n", a.TotalXP, a.Level, a.Rank))
	if a.LeveledUp() {
		sb.WriteString(fmt.Sprintf("🎉 Level up! You reached level %d.\n", a.Level))
	}
	if a.RankChanged() {
		sb.WriteString(fmt.Sprintf("🎖 New rank: %s\n", a.Rank))
	}
	for _, ach := range out.Unlocked {
		sb.WriteString(fmt.Sprintf("🏆 Achievement unlocked: *%s* (+%d XP)\n", ach.Name, ach.XPReward))
	}
	return sb.String()
}

func formatBattleCase(battle *app.Battle) string {
	pc := battle.Case
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚔️ *%s*\n\n", battle.Item.Title))
	sb.WriteString(fmt.Sprintf("🩺 *%s*\n", pc.Title))
	if pc.Age > 0 {
		sb.WriteString(fmt.Sprintf("👤 %d-year-old %s\n", pc.Age, strings.ToLower(pc.Gender)))
	}
	if pc.ChiefComplaint != "" {
		sb.WriteString(fmt.Sprintf("🗣 %s\n", pc.ChiefComplaint))
	}
	if pc.Presentation != "" {
		sb.WriteString("\n" + pc.Presentation + "\n")
	}
	v := pc.Vitals
	sb.WriteString(fmt.Sprintf("\n📈 BP %s · HR %s · RR %s · T %s · SpO2 %s\n", v.BP, v.HR, v.RR, v.Temp, v.SpO2))
	sb.WriteString("\nReply with your diagnosis on the first line and your treatment plan below it.")
	return sb.String()
}

func formatBattleResult(battle *app.Battle, res *app.BattleOutcome) string {
	e := res.Evaluation
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚔️ *Score: %d/100*\n", res.Average))
	sb.WriteString(fmt.Sprintf("Diagnosis %d · Investigation %d · Treatment %d · Reasoning %d\n",
		e.DiagnosisScore, e.InvestigationScore, e.TreatmentScore, e.ReasoningScore))
	if battle.Case.CorrectDiagnosis != "" {
		sb.WriteString(fmt.Sprintf("🎯 Diagnosis: %s\n", battle.Case.CorrectDiagnosis))
	}
	if e.Feedback != "" {
		sb.WriteString("\n" + e.Feedback + "\n")
	}
	for _, s := range e.Suggestions {
		if s != "" {
			sb.WriteString("• " + s + "\n")
		}
	}
	if !res.Won {
		sb.WriteString(fmt.Sprintf("\nYou need %d to win this battle.\n", app.BattlePassScore))
	}
	return sb.String()
}

func formatDomains() string {
	var sb strings.Builder
	sb.WriteString("🩺 *Learning domains*\n")
	for _, s := range []models.Specialty{models.SpecialtyBasicSciences, models.SpecialtyClinicalMedicine} {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", s))
		for _, d := range catalog.DomainsBySpecialty(s) {
			sb.WriteString(fmt.Sprintf("• %s (`%s`): %s\n", d.Name, d.ID, d.Description))
		}
	}
	return sb.String()
}

func formatItems(title string, items []models.CatalogItem, snap models.ProgressionSnapshot) string {
	if len(items) == 0 {
		return fmt.Sprintf("%s\n\nNothing here yet. Try /cases without a difficulty or pick another domain with /domains.", title)
	}
	var sb strings.Builder
	sb.WriteString(title + "\n")
	for _, it := range items {
		mark := "▫️"
		if snap.HasCompleted(it.ItemKey()) {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("\n%s *%s* (%s, %d XP)\n", mark, it.Title, it.Difficulty, it.XPReward))
		if it.Description != "" {
			sb.WriteString(it.Description + "\n")
		}
	}
	return sb.String()
}

func formatCardQuestion(card models.Flashcard, position, total int) string {
	return fmt.Sprintf("🗂 *Card %d of %d*\n\n❓ %s", position, total, card.Question)
}

func formatCardAnswer(card models.Flashcard) string {
	text := fmt.Sprintf("❓ %s\n\n💡 *%s*", card.Question, card.Answer)
	if card.ClinicalRelevance != "" {
		text += "\n\n🩺 " + card.ClinicalRelevance
	}
	return text + "\n\nHow well did you recall it?"
}

func formatReminder(streak int) string {
	if streak > 0 {
		return fmt.Sprintf("🔥 Your %s streak ends tonight! Complete a case or review a few cards to keep it going.\n\n/review · /cases",
			plural(streak, "day", "days"))
	}
	return "📚 Time for today's study session. A few flashcards are enough to start a new streak.\n\n/review · /cases"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
