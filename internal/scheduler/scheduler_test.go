package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/internal/session"
	"github.com/example/novalearn/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string]int
}

func (n *recordingNotifier) SendStreakReminder(_ context.Context, p models.Profile, streak int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = make(map[string]int)
	}
	n.calls[p.ID] = streak
	return nil
}

type fixture struct {
	sched    *Scheduler
	notifier *recordingNotifier
	sessions *session.Manager
	activity *database.ActivityRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Options{Type: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	profiles := database.NewProfileRepository(db)
	activity := database.NewActivityRepository(db)
	sessions := session.NewManager(database.NewProgressionRepository(db))
	notifier := &recordingNotifier{}

	ctx := context.Background()
	for _, p := range []models.Profile{
		{ID: "alice", DomainID: "internal-medicine", NotificationHour: 19},
		{ID: "bob", DomainID: "psychiatry", NotificationHour: 19},
		{ID: "carol", DomainID: "psychiatry", NotificationHour: 7},
	} {
		p := p
		require.NoError(t, profiles.Create(ctx, &p))
	}

	s := New(notifier, profiles, activity, sessions, Options{StartHour: 8, EndHour: 22}, zaptest.NewLogger(t))
	return &fixture{sched: s, notifier: notifier, sessions: sessions, activity: activity}
}

func freeze(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func (f *fixture) setStreak(t *testing.T, userID string, n int) {
	t.Helper()
	require.NoError(t, f.sessions.Do(context.Background(), userID, func(s *progression.Store) error {
		return s.SetStreak(n)
	}))
}

func TestRolloverStreaks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	freeze(t, time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC))

	f.setStreak(t, "alice", 5)
	f.setStreak(t, "bob", 3)
	require.NoError(t, f.activity.Touch(ctx, "alice", "2026-03-09"))
	require.NoError(t, f.activity.Touch(ctx, "bob", "2026-03-07"))

	n, err := f.sched.RolloverStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	alice, err := f.sessions.View(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, alice.Streak)

	bob, err := f.sessions.View(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, bob.Streak)

	// A second run finds nothing left to reset
	n, err = f.sched.RolloverStreaks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	freeze(t, time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC))

	f.setStreak(t, "bob", 4)
	require.NoError(t, f.activity.Touch(ctx, "alice", "2026-03-10"))
	require.NoError(t, f.activity.Touch(ctx, "bob", "2026-03-09"))

	n, err := f.sched.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]int{"bob": 4}, f.notifier.calls)
}

func TestSendReminders_OutsideWindow(t *testing.T) {
	f := newFixture(t)
	freeze(t, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))

	n, err := f.sched.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.notifier.calls)
}

func TestRunManualCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	freeze(t, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC))

	sent, err := f.sched.RunManualCheck(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Contains(t, f.notifier.calls, "carol")

	_, err = f.sched.RunManualCheck(ctx, "nobody")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sched.Start())
	assert.Len(t, f.sched.scheduler.Jobs(), 2)
	f.sched.Stop()
}
