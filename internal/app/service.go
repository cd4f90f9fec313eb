// Package app is the application layer shared by the Telegram bot and the CLI.
// Every XP-bearing call goes through the session manager, so progression
// changes of one learner are serialized, and also records the day's activity.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/mentor"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/internal/quiz"
	"github.com/example/novalearn/internal/review"
	"github.com/example/novalearn/internal/session"
	"github.com/example/novalearn/internal/streak"
	"github.com/example/novalearn/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	// ErrNotOnboarded is returned for a user without a profile
	ErrNotOnboarded = errors.New("profile not onboarded")
	// ErrUnknownItem is returned when a catalog item or flashcard does not exist
	ErrUnknownItem = errors.New("unknown catalog item")
	// ErrUnknownDomain is returned when onboarding names a domain outside the catalog
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrScoredItem is returned when an item that is graded by the mentor is completed directly
	ErrScoredItem = errors.New("item must be submitted for scoring")
)

// CardMasteryReward is the XP granted the first time a flashcard is mastered
const CardMasteryReward = 25

// DefaultNotificationHour is used when onboarding does not pick a reminder hour
const DefaultNotificationHour = 19

// timeNow is replaced in tests
var timeNow = time.Now

// Deps are the collaborators of a Service
type Deps struct {
	DB       *sqlx.DB
	Sessions *session.Manager
	Mentor   *mentor.Mentor
	Location *time.Location
	Rand     *rand.Rand
	Logger   *zap.Logger
}

// Service implements the learner-facing operations
type Service struct {
	profiles *database.ProfileRepository
	catalog  *database.CatalogRepository
	cards    *database.CardProgressRepository
	activity *database.ActivityRepository
	quizzes  *database.QuizResultRepository
	sessions *session.Manager
	mentor   *mentor.Mentor
	tracker  *streak.Tracker
	sm2      *review.SM2
	builder  *quiz.Builder
	logger   *zap.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewService wires the repositories over d.DB. A nil mentor answers with
// canned content only.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewManager(database.NewProgressionRepository(d.DB), session.WithLogger(logger))
	}
	m := d.Mentor
	if m == nil {
		m = mentor.New(nil, logger)
	}
	rnd := d.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		profiles: database.NewProfileRepository(d.DB),
		catalog:  database.NewCatalogRepository(d.DB),
		cards:    database.NewCardProgressRepository(d.DB),
		activity: database.NewActivityRepository(d.DB),
		quizzes:  database.NewQuizResultRepository(d.DB),
		sessions: sessions,
		mentor:   m,
		tracker:  streak.NewTracker(d.Location),
		sm2:      review.NewSM2(),
		builder:  quiz.NewBuilder(),
		logger:   logger.Named("app"),
		rnd:      rnd,
	}
}

// Profiles exposes the profile repository to the scheduler
func (s *Service) Profiles() *database.ProfileRepository {
	return s.profiles
}

// Activities exposes the activity repository to the scheduler
func (s *Service) Activities() *database.ActivityRepository {
	return s.activity
}

// Sessions returns the session manager
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Outcome is the effect of a progression mutation
type Outcome struct {
	Award    progression.Award
	Streak   int
	Unlocked []models.Achievement
}

// OnboardRequest holds the onboarding form
type OnboardRequest struct {
	TelegramID       *int64
	Username         string
	DomainID         string
	NotificationHour *int
}

// Onboard creates a profile enrolled in a domain and starts its streak.
// A Telegram account that already has a profile switches domain instead;
// the second return value reports whether a profile was created.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) (*models.Profile, bool, error) {
	domain, ok := catalog.DomainByID(strings.ToLower(strings.TrimSpace(req.DomainID)))
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownDomain, req.DomainID)
	}
	hour := DefaultNotificationHour
	if req.NotificationHour != nil {
		hour = *req.NotificationHour
		if hour < 0 || hour > 23 {
			return nil, false, fmt.Errorf("%w: notification hour %d", progression.ErrInvalidArgument, hour)
		}
	}

	if req.TelegramID != nil {
		existing, err := s.profiles.GetByTelegramID(ctx, *req.TelegramID)
		switch {
		case err == nil:
			existing.DomainID = domain.ID
			if req.Username != "" {
				existing.Username = req.Username
			}
			if req.NotificationHour != nil {
				existing.NotificationHour = hour
			}
			if err := s.profiles.Update(ctx, existing); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		case !errors.Is(err, database.ErrNotFound):
			return nil, false, err
		}
	}

	p := &models.Profile{
		ID:               uuid.NewString(),
		TelegramID:       req.TelegramID,
		Username:         req.Username,
		DomainID:         domain.ID,
		NotificationHour: hour,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, false, err
	}
	if _, err := s.RecordActivity(ctx, p.ID); err != nil {
		return nil, false, err
	}

	s.logger.Info("profile onboarded", zap.String("user", p.ID), zap.String("domain", domain.ID))
	return p, true, nil
}

// Profile returns the profile of userID
func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotOnboarded
	}
	return p, err
}

// ProfileByTelegram returns the profile linked to a Telegram account
func (s *Service) ProfileByTelegram(ctx context.Context, telegramID int64) (*models.Profile, error) {
	p, err := s.profiles.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotOnboarded
	}
	return p, err
}

// Status is the dashboard of a learner
type Status struct {
	Profile      models.Profile
	Domain       models.Domain
	Progress     models.ProgressionSnapshot
	DueCards     int
	Achievements []models.Achievement
}

// Status gathers the dashboard of userID
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.sessions.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	due, err := s.cards.CountDue(ctx, userID, timeNow())
	if err != nil {
		return nil, err
	}
	domain, _ := catalog.DomainByID(p.DomainID)
	return &Status{
		Profile:      *p,
		Domain:       domain,
		Progress:     snap,
		DueCards:     due,
		Achievements: unlockedAchievements(snap),
	}, nil
}

// AwardXP grants amount XP outside any catalog item
func (s *Service) AwardXP(ctx context.Context, userID string, amount int) (Outcome, error) {
	return s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		return st.AwardXP(amount)
	})
}

// CompleteItem completes a catalog item for its catalog reward. ref is either
// a bare item id or an item key such as "case:chest-pain".
func (s *Service) CompleteItem(ctx context.Context, userID, ref string) (*models.CatalogItem, Outcome, error) {
	item, err := s.lookupItem(ctx, ref)
	if err != nil {
		return nil, Outcome{}, err
	}
	if item.Kind == models.KindBattle {
		return nil, Outcome{}, fmt.Errorf("%w: %s", ErrScoredItem, item.ItemKey())
	}
	out, err := s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		return completeItem(st, item, item.XPReward)
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	return item, out, nil
}

// completeItem completes item for reward and credits its skills the first time
func completeItem(st *progression.Store, item *models.CatalogItem, reward int) (progression.Award, error) {
	award, err := st.CompleteItem(item.ItemKey(), reward)
	if err != nil || !award.Granted {
		return award, err
	}
	for _, skill := range item.Skills {
		if err := st.AddSkillPoints(skill, skillPointsFor(reward)); err != nil {
			return award, err
		}
	}
	return award, nil
}

func (s *Service) lookupItem(ctx context.Context, ref string) (*models.CatalogItem, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: item id must not be empty", progression.ErrInvalidArgument)
	}
	id, kind := ref, models.ItemKind("")
	if k, rest, ok := strings.Cut(ref, ":"); ok {
		kind, id = models.ItemKind(k), rest
	}

	item, err := s.catalog.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, ref)
	}
	if err != nil {
		return nil, err
	}
	if kind != "" && kind != item.Kind {
		return nil, fmt.Errorf("%w: %s is a %s", ErrUnknownItem, ref, item.Kind)
	}
	return item, nil
}

// skillPointsFor grants one point per started 100 XP of the item
func skillPointsFor(reward int) int {
	if reward <= 0 {
		return 1
	}
	return (reward + 99) / 100
}

// AddSkillPoints credits points to one skill
func (s *Service) AddSkillPoints(ctx context.Context, userID, skill string, points int) error {
	if _, err := s.Profile(ctx, userID); err != nil {
		return err
	}
	return s.sessions.Do(ctx, userID, func(st *progression.Store) error {
		return st.AddSkillPoints(skill, points)
	})
}

// RecordActivity marks the learner active today and returns the updated streak
func (s *Service) RecordActivity(ctx context.Context, userID string) (Outcome, error) {
	return s.mutate(ctx, userID, func(st *progression.Store) (progression.Award, error) {
		return current(st), nil
	})
}

// mutate runs fn under the learner's lock, advances the streak, touches the
// activity day and unlocks achievements.
func (s *Service) mutate(ctx context.Context, userID string, fn func(st *progression.Store) (progression.Award, error)) (Outcome, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return Outcome{}, err
	}

	now := timeNow()
	var out Outcome
	err := s.sessions.Do(ctx, userID, func(st *progression.Store) error {
		var lastActive string
		a, err := s.activity.Get(ctx, userID)
		switch {
		case err == nil:
			lastActive = a.LastActiveDay
		case !errors.Is(err, database.ErrNotFound):
			return err
		}

		award, err := fn(st)
		if err != nil {
			return err
		}

		next, _ := s.tracker.Next(lastActive, st.Streak(), now)
		if err := st.SetStreak(next); err != nil {
			return err
		}

		unlocked, err := unlockAchievements(st)
		if err != nil {
			return err
		}

		// Touched under the lock so a failed save never counts today twice
		if err := s.activity.Touch(ctx, userID, s.tracker.Day(now)); err != nil {
			return err
		}

		if len(unlocked) > 0 {
			final := current(st)
			award.TotalXP, award.Level, award.Rank = final.TotalXP, final.Level, final.Rank
		}
		out = Outcome{Award: award, Streak: next, Unlocked: unlocked}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	for _, a := range out.Unlocked {
		s.logger.Info("achievement unlocked", zap.String("user", userID), zap.String("achievement", a.ID))
	}
	return out, nil
}

func current(st *progression.Store) progression.Award {
	xp := st.TotalXP()
	level := progression.LevelFor(xp)
	rank := st.Ladder().RankFor(xp)
	return progression.Award{TotalXP: xp, PreviousLevel: level, Level: level, PreviousRank: rank, Rank: rank}
}

// Reset returns a learner's progression to its initial state and forgets
// their flashcard reviews. The profile is kept.
func (s *Service) Reset(ctx context.Context, userID string) error {
	if _, err := s.Profile(ctx, userID); err != nil {
		return err
	}
	if err := s.sessions.Do(ctx, userID, func(st *progression.Store) error {
		st.Reset()
		return nil
	}); err != nil {
		return err
	}
	if err := s.cards.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.activity.Delete(ctx, userID)
}

// Logout destroys the learner's progression and profile
func (s *Service) Logout(ctx context.Context, userID string) error {
	if _, err := s.Profile(ctx, userID); err != nil {
		return err
	}
	if err := s.sessions.Drop(ctx, userID); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("profile logged out", zap.String("user", userID))
	return nil
}

// Browse lists catalog items matching q in the given order
func (s *Service) Browse(ctx context.Context, q catalog.Query, order catalog.SortField) ([]models.CatalogItem, error) {
	items, err := s.catalog.List(ctx, q.Kind)
	if err != nil {
		return nil, err
	}
	items = catalog.Filter(items, q)
	if order != "" {
		if err := catalog.SortBy(items, order); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// AskMentor asks the mentor in the context of the learner's domain
func (s *Service) AskMentor(ctx context.Context, userID string, kind mentor.Kind, prompt string) (mentor.Response, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return mentor.Response{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		return mentor.Response{}, fmt.Errorf("%w: prompt must not be empty", progression.ErrInvalidArgument)
	}
	return s.mentor.Ask(ctx, mentor.Request{Kind: kind, Domain: p.DomainID, Prompt: prompt}), nil
}

// QuizHistory returns the latest quiz results of a learner
func (s *Service) QuizHistory(ctx context.Context, userID string, limit int) ([]models.QuizResult, error) {
	return s.quizzes.GetByUser(ctx, userID, limit)
}
