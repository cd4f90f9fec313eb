package progression

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/example/novalearn/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InitialState(t *testing.T) {
	s := New()

	assert.Equal(t, 0, s.TotalXP())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, RankIntern, s.Rank())
	assert.Equal(t, 0, s.Streak())
	assert.Empty(t, s.Snapshot().CompletedItems)
}

func TestNew_WithStreakSeed(t *testing.T) {
	s := New(WithStreak(4))
	assert.Equal(t, 4, s.Streak())
}

func TestAwardXP_Accumulates(t *testing.T) {
	s := New()

	a, err := s.AwardXP(400)
	require.NoError(t, err)
	assert.True(t, a.Granted)
	assert.Equal(t, 400, a.TotalXP)

	a, err = s.AwardXP(700)
	require.NoError(t, err)
	assert.Equal(t, 1100, a.TotalXP)
	assert.Equal(t, 1, a.PreviousLevel)
	assert.Equal(t, 2, a.Level)
	assert.True(t, a.LeveledUp())
	assert.False(t, a.RankChanged())
}

func TestAwardXP_RejectsNonPositive(t *testing.T) {
	s := New()
	_, err := s.AwardXP(50)
	require.NoError(t, err)

	for _, amount := range []int{0, -5} {
		_, err := s.AwardXP(amount)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "amount %d", amount)
		assert.Equal(t, 50, s.TotalXP(), "amount %d must leave XP unchanged", amount)
	}
}

func TestAwardXP_RejectsOverflow(t *testing.T) {
	s := New()
	_, err := s.AwardXP(5000)
	require.NoError(t, err)

	_, err = s.AwardXP(math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 5000, s.TotalXP())
	assert.Equal(t, RankConsultant, s.Rank())

	_, err = s.CompleteItem("case:huge", math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, s.IsCompleted("case:huge"))
	assert.Equal(t, 5000, s.TotalXP())

	// The largest amount that still fits is accepted
	a, err := s.AwardXP(math.MaxInt - 5000)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, a.TotalXP)

	_, err = Restore(s.Snapshot())
	assert.NoError(t, err)

	require.NoError(t, s.AddSkillPoints("Cardiology", math.MaxInt))
	assert.ErrorIs(t, s.AddSkillPoints("Cardiology", 1), ErrInvalidArgument)
}

func TestCompleteItem_Idempotent(t *testing.T) {
	s := New()

	first, err := s.CompleteItem("X", 100)
	require.NoError(t, err)
	assert.True(t, first.Granted)

	second, err := s.CompleteItem("X", 100)
	require.NoError(t, err)
	assert.False(t, second.Granted)

	assert.Equal(t, 100, s.TotalXP())
	snap := s.Snapshot()
	assert.Equal(t, []string{"X"}, snap.CompletedItems)
}

func TestCompleteItem_ZeroRewardStillRecorded(t *testing.T) {
	s := New()

	a, err := s.CompleteItem("deck-1", 0)
	require.NoError(t, err)
	assert.True(t, a.Granted)
	assert.Equal(t, 0, a.Amount)
	assert.True(t, s.IsCompleted("deck-1"))
	assert.Equal(t, 0, s.TotalXP())
}

func TestCompleteItem_RejectsBadInput(t *testing.T) {
	s := New()

	_, err := s.CompleteItem("", 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.CompleteItem("   ", 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.CompleteItem("case-1", -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Empty(t, s.Snapshot().CompletedItems)
	assert.Equal(t, 0, s.TotalXP())
}

func TestReset_ClearsState(t *testing.T) {
	s := New(WithStreak(3))
	_, err := s.CompleteItem("case-1", 2500)
	require.NoError(t, err)
	require.NoError(t, s.AddSkillPoints("Cardiology", 5))

	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.TotalXP)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, string(RankIntern), snap.Rank)
	assert.Equal(t, 0, snap.Streak)
	assert.Empty(t, snap.CompletedItems)
	assert.Empty(t, snap.SkillPoints)

	// the item can be earned again after a reset
	a, err := s.CompleteItem("case-1", 300)
	require.NoError(t, err)
	assert.True(t, a.Granted)
}

func TestScenario_CasesAndDuplicate(t *testing.T) {
	s := New()

	_, err := s.CompleteItem("case-1", 300)
	require.NoError(t, err)
	assert.Equal(t, 300, s.TotalXP())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, RankIntern, s.Rank())

	a, err := s.CompleteItem("case-2", 2000)
	require.NoError(t, err)
	assert.Equal(t, 2300, s.TotalXP())
	assert.Equal(t, 3, s.Level())
	assert.Equal(t, RankResident, s.Rank())
	assert.True(t, a.RankChanged())

	before := s.Snapshot()
	_, err = s.CompleteItem("case-1", 300)
	require.NoError(t, err)
	assert.Equal(t, before, s.Snapshot())
}

func TestMonotonicAndDerivedAfterEveryCall(t *testing.T) {
	s := New()
	calls := []func() (Award, error){
		func() (Award, error) { return s.AwardXP(999) },
		func() (Award, error) { return s.CompleteItem("a", 1) },
		func() (Award, error) { return s.CompleteItem("a", 1) },
		func() (Award, error) { return s.AwardXP(-3) },
		func() (Award, error) { return s.CompleteItem("b", 4000) },
		func() (Award, error) { return s.AwardXP(5000) },
		func() (Award, error) { return s.CompleteItem("", 10) },
	}

	prev := 0
	for i, call := range calls {
		_, _ = call()
		snap := s.Snapshot()
		assert.GreaterOrEqual(t, snap.TotalXP, prev, "call %d", i)
		assert.Equal(t, snap.TotalXP/1000+1, snap.Level, "call %d", i)
		assert.Equal(t, string(DefaultLadder.RankFor(snap.TotalXP)), snap.Rank, "call %d", i)
		prev = snap.TotalXP
	}
	assert.Equal(t, 10000, s.TotalXP())
	assert.Equal(t, RankNovaSurgeon, s.Rank())
}

func TestCompleteItem_ConcurrentCallsGrantOnce(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	granted := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.CompleteItem("battle-7", 150)
			if err == nil {
				granted <- a.Granted
			}
		}()
	}
	wg.Wait()
	close(granted)

	n := 0
	for g := range granted {
		if g {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, 150, s.TotalXP())
}

func TestAddSkillPoints(t *testing.T) {
	s := New()

	require.NoError(t, s.AddSkillPoints("Cardiology", 3))
	require.NoError(t, s.AddSkillPoints("Cardiology", 2))
	assert.ErrorIs(t, s.AddSkillPoints("", 2), ErrInvalidArgument)
	assert.ErrorIs(t, s.AddSkillPoints("Cardiology", 0), ErrInvalidArgument)

	assert.Equal(t, map[string]int{"Cardiology": 5}, s.Snapshot().SkillPoints)
	assert.Equal(t, 0, s.TotalXP())
}

func TestSetStreak(t *testing.T) {
	s := New()

	require.NoError(t, s.SetStreak(6))
	assert.Equal(t, 6, s.Streak())
	assert.ErrorIs(t, s.SetStreak(-1), ErrInvalidArgument)
	assert.Equal(t, 6, s.Streak())
}

func TestCompletedCount(t *testing.T) {
	s := New()
	for _, id := range []string{"case:a", "case:b", "deck:a", "achievement:first-case"} {
		_, err := s.CompleteItem(id, 10)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, s.CompletedCount(models.KindCase))
	assert.Equal(t, 1, s.CompletedCount(models.KindDeck))
	assert.Equal(t, 0, s.CompletedCount(models.KindCard))
	assert.Equal(t, 4, s.CompletedCount(""))
}

func TestRestore_RecomputesDerivedFields(t *testing.T) {
	snap := models.ProgressionSnapshot{
		TotalXP:        5200,
		Level:          99,
		Rank:           "Nova Surgeon",
		Streak:         2,
		CompletedItems: []string{"case:b", "case:a"},
		SkillPoints:    map[string]int{"Surgery": 4},
	}

	s, err := Restore(snap)
	require.NoError(t, err)

	got := s.Snapshot()
	assert.Equal(t, 6, got.Level)
	assert.Equal(t, string(RankConsultant), got.Rank)
	assert.Equal(t, 800, got.XPToNextLevel)
	assert.Equal(t, []string{"case:a", "case:b"}, got.CompletedItems)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, 4, got.SkillPoints["Surgery"])
}

func TestRestore_RejectsCorruptSnapshots(t *testing.T) {
	cases := map[string]models.ProgressionSnapshot{
		"negative xp":     {TotalXP: -1},
		"negative streak": {Streak: -2},
		"blank item":      {CompletedItems: []string{"ok", " "}},
		"negative skill":  {SkillPoints: map[string]int{"Anatomy": -1}},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Restore(snap)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.AddSkillPoints("Anatomy", 1))

	snap := s.Snapshot()
	snap.SkillPoints["Anatomy"] = 100

	assert.Equal(t, 1, s.Snapshot().SkillPoints["Anatomy"])
}
