// Package quiz builds multiple-choice quizzes from flashcard decks and scores them.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/example/novalearn/pkg/models"
)

// PassPercent is the share of correct answers needed to pass
const PassPercent = 70

// ErrEmptyDeck is returned when there are no cards to ask about
var ErrEmptyDeck = errors.New("deck has no cards")

// Question is a single multiple-choice question
type Question struct {
	Card         models.Flashcard
	Options      []string
	CorrectIndex int
}

// Result of a scored quiz
type Result struct {
	Total   int
	Correct int
	Passed  bool
}

// Percent returns the score as a whole percentage
func (r Result) Percent() int {
	if r.Total == 0 {
		return 0
	}
	return r.Correct * 100 / r.Total
}

// Builder assembles quizzes
type Builder struct {
	Distractors int
}

// NewBuilder returns a builder with three wrong options per question
func NewBuilder() *Builder {
	return &Builder{Distractors: 3}
}

// Build picks up to count cards of deck and turns each into a question.
// Wrong options come from the same deck first, then from pool.
func (b *Builder) Build(deck, pool []models.Flashcard, count int, rnd *rand.Rand) ([]Question, error) {
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}

	cards := make([]models.Flashcard, len(deck))
	copy(cards, deck)
	rnd.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	if len(cards) > count {
		cards = cards[:count]
	}

	questions := make([]Question, 0, len(cards))
	for _, card := range cards {
		options := append(b.distractors(card, deck, pool, rnd), card.Answer)
		correctIndex := len(options) - 1
		rnd.Shuffle(len(options), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			options[i], options[j] = options[j], options[i]
		})
		questions = append(questions, Question{Card: card, Options: options, CorrectIndex: correctIndex})
	}
	return questions, nil
}

func (b *Builder) distractors(card models.Flashcard, deck, pool []models.Flashcard, rnd *rand.Rand) []string {
	seen := map[string]bool{card.Answer: true}
	options := make([]string, 0, b.Distractors)

	pick := func(from []models.Flashcard, sameDeck bool) {
		candidates := make([]models.Flashcard, 0, len(from))
		for _, c := range from {
			if (c.DeckID == card.DeckID) == sameDeck && c.ID != card.ID {
				candidates = append(candidates, c)
			}
		}
		rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		for _, c := range candidates {
			if len(options) == b.Distractors {
				return
			}
			if !seen[c.Answer] {
				seen[c.Answer] = true
				options = append(options, c.Answer)
			}
		}
	}

	pick(deck, true)
	pick(pool, false)
	return options
}

// Score checks answers, given as option indexes, against the questions
func Score(questions []Question, answers []int) (Result, error) {
	if len(answers) != len(questions) {
		return Result{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(questions))
	}
	res := Result{Total: len(questions)}
	for i, q := range questions {
		if answers[i] == q.CorrectIndex {
			res.Correct++
		}
	}
	res.Passed = res.Total > 0 && res.Correct*100 >= PassPercent*res.Total
	return res, nil
}
