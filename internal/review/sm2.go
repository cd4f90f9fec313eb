// Package review schedules flashcard reviews with the SuperMemo-2 algorithm.
package review

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/novalearn/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Answers at or above this quality count as recalled
	PassThreshold Quality
	// Upper bound of the review interval in days
	MaxInterval int
	// Fixed intervals for the first repetitions, indexed by repetition count
	InitialIntervals []int
	// A card is mastered once it reaches both thresholds with a good last answer
	MasteryRepetitions int
	MasteryInterval    int
}

// NewSM2 returns SM2 with the default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:      QualityCorrectDifficult,
		MaxInterval:        365,
		InitialIntervals:   []int{0, 1, 2, 3, 7, 10, 15, 20, 30},
		MasteryRepetitions: 5,
		MasteryInterval:    30,
	}
}

// Quality is the 0-5 self-assessment of a recall
type Quality int

const (
	// Complete blackout, unable to recall
	QualityBlackout Quality = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect Quality = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar Quality = 2
	// Correct response but required significant effort
	QualityCorrectDifficult Quality = 3
	// Correct response after some hesitation
	QualityCorrectHesitation Quality = 4
	// Perfect response with no hesitation
	QualityPerfect Quality = 5
)

// Valid reports whether q is on the 0-5 scale
func (q Quality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Process applies one review of quality q at now
func (sm *SM2) Process(progress *models.CardProgress, q Quality, now time.Time) error {
	if !q.Valid() {
		return fmt.Errorf("quality %d out of range 0-5", q)
	}

	reviewed := now
	progress.LastReviewAt = &reviewed
	progress.LastQuality = int(q)

	newEF := progress.EasinessFactor + (0.1 - (5.0-float64(q))*(0.08+(5.0-float64(q))*0.02))
	if newEF < 1.3 {
		newEF = 1.3
	}
	progress.EasinessFactor = newEF

	if q >= sm.PassThreshold {
		reps := progress.Repetitions + 1
		var next int
		if reps < len(sm.InitialIntervals) {
			next = sm.InitialIntervals[reps]
		} else {
			next = int(float64(progress.Interval) * newEF)
		}
		if next > sm.MaxInterval {
			next = sm.MaxInterval
		}
		progress.Interval = next
		progress.Repetitions = reps
	} else {
		// Forgotten cards start over and come back tomorrow
		progress.Repetitions = 0
		progress.Interval = 1
	}

	progress.NextReviewAt = now.AddDate(0, 0, progress.Interval)
	return nil
}

// IsMastered determines if a card is considered mastered
func (sm *SM2) IsMastered(progress *models.CardProgress) bool {
	return progress.Repetitions >= sm.MasteryRepetitions &&
		progress.LastQuality >= int(QualityCorrectHesitation) &&
		progress.Interval >= sm.MasteryInterval
}

// Due returns up to limit cards due at now. Never-reviewed cards come first,
// then the hardest (lowest easiness), then the most overdue.
func (sm *SM2) Due(progress []models.CardProgress, now time.Time, limit int) []models.CardProgress {
	var due []models.CardProgress
	for _, p := range progress {
		if !p.NextReviewAt.After(now) {
			due = append(due, p)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if (a.LastReviewAt == nil) != (b.LastReviewAt == nil) {
			return a.LastReviewAt == nil
		}
		if a.EasinessFactor != b.EasinessFactor {
			return a.EasinessFactor < b.EasinessFactor
		}
		return a.NextReviewAt.Before(b.NextReviewAt)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}
