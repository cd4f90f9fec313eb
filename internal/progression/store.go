// Package progression owns a learner's XP, level, rank, streak and completed items.
//
// Level and rank are never stored: they are derived from the total XP every
// time they are read, so they cannot drift from it.
package progression

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/example/novalearn/pkg/models"
)

// ErrInvalidArgument is returned when a caller passes a value the store refuses
// to absorb (non-positive XP, blank item id, negative streak).
var ErrInvalidArgument = errors.New("invalid argument")

// Award describes the effect of an XP-bearing call
type Award struct {
	Granted       bool
	Amount        int
	TotalXP       int
	PreviousLevel int
	Level         int
	PreviousRank  Rank
	Rank          Rank
}

// LeveledUp reports whether the call crossed a level boundary
func (a Award) LeveledUp() bool {
	return a.Level > a.PreviousLevel
}

// RankChanged reports whether the call moved the learner to another rank
func (a Award) RankChanged() bool {
	return a.Rank != a.PreviousRank
}

// Option configures a Store
type Option func(*Store)

// WithLadder replaces the default rank ladder
func WithLadder(l Ladder) Option {
	return func(s *Store) {
		if len(l) > 0 {
			s.ladder = l
		}
	}
}

// WithStreak seeds the streak, typically from onboarding input
func WithStreak(streak int) Option {
	return func(s *Store) {
		if streak > 0 {
			s.streak = streak
		}
	}
}

// Store holds the progression state of a single learner.
// It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	ladder      Ladder
	totalXP     int
	streak      int
	completed   map[string]struct{}
	skillPoints map[string]int
}

// New creates a store in the initial lifecycle state
func New(opts ...Option) *Store {
	s := &Store{
		ladder:      DefaultLadder,
		completed:   make(map[string]struct{}),
		skillPoints: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rebuilds a store from a snapshot. Stored level and rank are ignored.
func Restore(snap models.ProgressionSnapshot, opts ...Option) (*Store, error) {
	if snap.TotalXP < 0 {
		return nil, fmt.Errorf("%w: negative total XP %d", ErrInvalidArgument, snap.TotalXP)
	}
	if snap.Streak < 0 {
		return nil, fmt.Errorf("%w: negative streak %d", ErrInvalidArgument, snap.Streak)
	}

	s := New(opts...)
	s.totalXP = snap.TotalXP
	s.streak = snap.Streak
	for _, id := range snap.CompletedItems {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: blank completed item id", ErrInvalidArgument)
		}
		s.completed[id] = struct{}{}
	}
	for skill, points := range snap.SkillPoints {
		if strings.TrimSpace(skill) == "" || points < 0 {
			return nil, fmt.Errorf("%w: bad skill points entry %q=%d", ErrInvalidArgument, skill, points)
		}
		s.skillPoints[skill] = points
	}
	return s, nil
}

// AwardXP adds amount to the total XP
func (s *Store) AwardXP(amount int) (Award, error) {
	if amount <= 0 {
		return Award{}, fmt.Errorf("%w: XP amount must be positive, got %d", ErrInvalidArgument, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRoom(amount); err != nil {
		return Award{}, err
	}
	return s.award(amount), nil
}

// CompleteItem marks itemID complete and awards reward the first time only.
// Repeated completion of the same item is a no-op with Granted == false.
func (s *Store) CompleteItem(itemID string, reward int) (Award, error) {
	if strings.TrimSpace(itemID) == "" {
		return Award{}, fmt.Errorf("%w: item id must not be empty", ErrInvalidArgument)
	}
	if reward < 0 {
		return Award{}, fmt.Errorf("%w: reward must not be negative, got %d", ErrInvalidArgument, reward)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.completed[itemID]; done {
		return s.unchanged(), nil
	}
	if err := s.checkRoom(reward); err != nil {
		return Award{}, err
	}
	s.completed[itemID] = struct{}{}

	if reward == 0 {
		a := s.unchanged()
		a.Granted = true
		return a, nil
	}
	return s.award(reward), nil
}

// AddSkillPoints credits points to a skill. Skill points do not affect XP.
func (s *Store) AddSkillPoints(skill string, points int) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return fmt.Errorf("%w: skill must not be empty", ErrInvalidArgument)
	}
	if points <= 0 {
		return fmt.Errorf("%w: skill points must be positive, got %d", ErrInvalidArgument, points)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if points > math.MaxInt-s.skillPoints[skill] {
		return fmt.Errorf("%w: %d points would overflow %s", ErrInvalidArgument, points, skill)
	}
	s.skillPoints[skill] += points
	return nil
}

// SetStreak is called by the day-boundary keeper
func (s *Store) SetStreak(streak int) error {
	if streak < 0 {
		return fmt.Errorf("%w: streak must not be negative, got %d", ErrInvalidArgument, streak)
	}

	s.mu.Lock()
	s.streak = streak
	s.mu.Unlock()
	return nil
}

// Reset returns the store to its initial state (logout)
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalXP = 0
	s.streak = 0
	s.completed = make(map[string]struct{})
	s.skillPoints = make(map[string]int)
}

// TotalXP returns the accumulated XP
func (s *Store) TotalXP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalXP
}

// Level returns the level derived from the total XP
func (s *Store) Level() int {
	return LevelFor(s.TotalXP())
}

// Rank returns the rank derived from the total XP
func (s *Store) Rank() Rank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ladder.RankFor(s.totalXP)
}

// Streak returns the current streak
func (s *Store) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// IsCompleted reports whether itemID has been completed
func (s *Store) IsCompleted(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[itemID]
	return ok
}

// CompletedCount returns how many completed items carry the given kind prefix.
// An empty kind counts every item.
func (s *Store) CompletedCount(kind models.ItemKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == "" {
		return len(s.completed)
	}
	prefix := string(kind) + ":"
	n := 0
	for id := range s.completed {
		if strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n
}

// Ladder returns the rank ladder in use
func (s *Store) Ladder() Ladder {
	return s.ladder
}

// Snapshot returns a consistent copy of the state with derived fields filled in
func (s *Store) Snapshot() models.ProgressionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]string, 0, len(s.completed))
	for id := range s.completed {
		items = append(items, id)
	}
	sort.Strings(items)

	var skills map[string]int
	if len(s.skillPoints) > 0 {
		skills = make(map[string]int, len(s.skillPoints))
		for k, v := range s.skillPoints {
			skills[k] = v
		}
	}

	return models.ProgressionSnapshot{
		TotalXP:        s.totalXP,
		Level:          LevelFor(s.totalXP),
		Rank:           string(s.ladder.RankFor(s.totalXP)),
		XPToNextLevel:  XPToNextLevel(s.totalXP),
		Streak:         s.streak,
		CompletedItems: items,
		SkillPoints:    skills,
	}
}

// checkRoom rejects amounts that would overflow the total. s.mu must be held.
func (s *Store) checkRoom(amount int) error {
	if amount > math.MaxInt-s.totalXP {
		return fmt.Errorf("%w: %d XP would overflow the total of %d", ErrInvalidArgument, amount, s.totalXP)
	}
	return nil
}

// award must be called with s.mu held
func (s *Store) award(amount int) Award {
	prevLevel := LevelFor(s.totalXP)
	prevRank := s.ladder.RankFor(s.totalXP)

	s.totalXP += amount

	return Award{
		Granted:       true,
		Amount:        amount,
		TotalXP:       s.totalXP,
		PreviousLevel: prevLevel,
		Level:         LevelFor(s.totalXP),
		PreviousRank:  prevRank,
		Rank:          s.ladder.RankFor(s.totalXP),
	}
}

// unchanged must be called with s.mu held
func (s *Store) unchanged() Award {
	level := LevelFor(s.totalXP)
	rank := s.ladder.RankFor(s.totalXP)
	return Award{
		TotalXP:       s.totalXP,
		PreviousLevel: level,
		Level:         level,
		PreviousRank:  rank,
		Rank:          rank,
	}
}
