package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/internal/quiz"
	"github.com/example/novalearn/internal/review"
	"github.com/example/novalearn/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewOutcome is the result of grading one flashcard
type ReviewOutcome struct {
	Card     models.Flashcard
	Progress models.CardProgress
	Mastered bool
	Outcome
}

// ReviewCard grades a recall of cardID. Mastering a card completes it once
// for CardMasteryReward XP.
func (s *Service) ReviewCard(ctx context.Context, userID, cardID string, q review.Quality) (*ReviewOutcome, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("%w: quality %d is outside 0-5", progression.ErrInvalidArgument, q)
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	card, err := s.catalog.GetFlashcard(ctx, cardID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: card %s", ErrUnknownItem, cardID)
	}
	if err != nil {
		return nil, err
	}

	now := timeNow()
	progress, err := s.cards.Get(ctx, userID, cardID)
	if errors.Is(err, database.ErrNotFound) {
		progress = models.NewCardProgress(userID, cardID, now)
	} else if err != nil {
		return nil, err
	}
	if err := s.sm2.Process(progress, q, now); err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, progress); err != nil {
		return nil, err
	}

	res := &ReviewOutcome{Card: *card, Progress: *progress, Mastered: s.sm2.IsMastered(progress)}
	res.Outcome, err = s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		if !res.Mastered {
			return current(st), nil
		}
		return st.CompleteItem(models.CardItemID(cardID), CardMasteryReward)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DueCards returns up to limit cards to study: tracked cards that are due
// first, then cards never seen from decks of the learner's domain, then
// from the other decks.
func (s *Service) DueCards(ctx context.Context, userID string, limit int) ([]models.Flashcard, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", progression.ErrInvalidArgument, limit)
	}
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	tracked, err := s.cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(tracked))
	for _, t := range tracked {
		seen[t.CardID] = true
	}

	var cards []models.Flashcard
	for _, due := range s.sm2.Due(tracked, timeNow(), limit) {
		card, err := s.catalog.GetFlashcard(ctx, due.CardID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}

	decks, err := s.catalog.List(ctx, models.KindDeck)
	if err != nil {
		return nil, err
	}
	ordered := make([]models.CatalogItem, 0, len(decks))
	for _, d := range decks {
		if d.DomainID == p.DomainID {
			ordered = append(ordered, d)
		}
	}
	for _, d := range decks {
		if d.DomainID != p.DomainID {
			ordered = append(ordered, d)
		}
	}

	for _, d := range ordered {
		if len(cards) >= limit {
			break
		}
		deckCards, err := s.catalog.FlashcardsByDeck(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range deckCards {
			if len(cards) >= limit {
				break
			}
			if !seen[c.ID] {
				seen[c.ID] = true
				cards = append(cards, c)
			}
		}
	}
	return cards, nil
}

// StartQuiz builds a multiple-choice quiz of up to count questions over a deck.
// Wrong options are drawn from the deck first, then from every other deck.
func (s *Service) StartQuiz(ctx context.Context, deckID string, count int) ([]quiz.Question, error) {
	deck, err := s.lookupItem(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.Kind != models.KindDeck {
		return nil, fmt.Errorf("%w: %s is not a deck", ErrUnknownItem, deckID)
	}
	cards, err := s.catalog.FlashcardsByDeck(ctx, deck.ID)
	if err != nil {
		return nil, err
	}

	decks, err := s.catalog.List(ctx, models.KindDeck)
	if err != nil {
		return nil, err
	}
	var pool []models.Flashcard
	for _, d := range decks {
		if d.ID == deck.ID {
			continue
		}
		other, err := s.catalog.FlashcardsByDeck(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		pool = append(pool, other...)
	}

	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.builder.Build(cards, pool, count, s.rnd)
}

// QuizOutcome is the result of a finished quiz
type QuizOutcome struct {
	Result quiz.Result
	Outcome
}

// FinishQuiz scores the answers, records the result and completes the deck
// when the quiz is passed.
func (s *Service) FinishQuiz(ctx context.Context, userID, deckID string, questions []quiz.Question, answers []int, took time.Duration) (*QuizOutcome, error) {
	deck, err := s.lookupItem(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.Kind != models.KindDeck {
		return nil, fmt.Errorf("%w: %s is not a deck", ErrUnknownItem, deckID)
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	result, err := quiz.Score(questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", progression.ErrInvalidArgument, err)
	}

	err = s.quizzes.Create(ctx, &models.QuizResult{
		UserID:   userID,
		DeckID:   deck.ID,
		Total:    result.Total,
		Correct:  result.Correct,
		Passed:   result.Passed,
		Duration: int(took.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	out := &QuizOutcome{Result: result}
	out.Outcome, err = s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		if !result.Passed {
			return current(st), nil
		}
		return completeItem(st, deck, deck.XPReward)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateDeckCards has the mentor write count flashcards about topic and adds
// them to a deck. An empty topic uses the deck title.
func (s *Service) GenerateDeckCards(ctx context.Context, deckID, topic string, count int) ([]models.Flashcard, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", progression.ErrInvalidArgument, count)
	}
	deck, err := s.lookupItem(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.Kind != models.KindDeck {
		return nil, fmt.Errorf("%w: %s is not a deck", ErrUnknownItem, deckID)
	}
	if strings.TrimSpace(topic) == "" {
		topic = deck.Title
	}

	drafts := s.mentor.GenerateFlashcards(ctx, topic, count)
	cards := make([]models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || strings.TrimSpace(d.Answer) == "" {
			continue
		}
		card := models.Flashcard{
			ID:                deck.ID + "-" + uuid.NewString()[:8],
			DeckID:            deck.ID,
			Question:          d.Question,
			Answer:            d.Answer,
			ClinicalRelevance: d.ClinicalRelevance,
		}
		if err := s.catalog.UpsertFlashcard(ctx, card); err != nil {
			return cards, err
		}
		cards = append(cards, card)
	}
	s.logger.Info("generated flashcards", zap.String("deck", deck.ID), zap.String("topic", topic), zap.Int("count", len(cards)))
	return cards, nil
}
