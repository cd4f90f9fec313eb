package progression

import (
	"fmt"
	"strings"
)

// XPPerLevel is the amount of XP separating two consecutive levels
const XPPerLevel = 1000

// Rank is a named tier assigned by XP threshold
type Rank string

const (
	RankIntern      Rank = "Intern"
	RankResident    Rank = "Resident"
	RankConsultant  Rank = "Consultant"
	RankNovaSurgeon Rank = "Nova Surgeon"
)

// Tier is one rung of a rank ladder. MinXP is an inclusive lower bound.
type Tier struct {
	MinXP int  `yaml:"min_xp" json:"min_xp"`
	Rank  Rank `yaml:"rank" json:"rank"`
}

// Ladder is an ordered list of tiers, lowest threshold first
type Ladder []Tier

// DefaultLadder is the ladder used by the medical flavor
var DefaultLadder = Ladder{
	{MinXP: 0, Rank: RankIntern},
	{MinXP: 2000, Rank: RankResident},
	{MinXP: 5000, Rank: RankConsultant},
	{MinXP: 10000, Rank: RankNovaSurgeon},
}

// NewLadder validates tiers and returns them as a ladder.
// The first tier must start at 0 and thresholds must strictly increase.
func NewLadder(tiers []Tier) (Ladder, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: ladder has no tiers", ErrInvalidArgument)
	}
	if tiers[0].MinXP != 0 {
		return nil, fmt.Errorf("%w: first tier must start at 0 XP, got %d", ErrInvalidArgument, tiers[0].MinXP)
	}
	for i, t := range tiers {
		if strings.TrimSpace(string(t.Rank)) == "" {
			return nil, fmt.Errorf("%w: tier %d has an empty rank", ErrInvalidArgument, i)
		}
		if i > 0 && t.MinXP <= tiers[i-1].MinXP {
			return nil, fmt.Errorf("%w: tier %q threshold %d does not exceed %d",
				ErrInvalidArgument, t.Rank, t.MinXP, tiers[i-1].MinXP)
		}
	}
	l := make(Ladder, len(tiers))
	copy(l, tiers)
	return l, nil
}

// RankFor returns the rank for xp, evaluating the highest threshold first
func (l Ladder) RankFor(xp int) Rank {
	for i := len(l) - 1; i >= 0; i-- {
		if xp >= l[i].MinXP {
			return l[i].Rank
		}
	}
	if len(l) > 0 {
		return l[0].Rank
	}
	return RankIntern
}

// Index returns the position of rank in the ladder, or -1
func (l Ladder) Index(rank Rank) int {
	for i, t := range l {
		if t.Rank == rank {
			return i
		}
	}
	return -1
}

// LevelFor returns floor(xp/1000)+1
func LevelFor(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// XPToNextLevel returns how much XP is missing until the next level
func XPToNextLevel(xp int) int {
	if xp < 0 {
		return XPPerLevel
	}
	return XPPerLevel - xp%XPPerLevel
}
