package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/internal/streak"
	"github.com/example/novalearn/pkg/models"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Default notification window
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// timeNow is replaced in tests
var timeNow = time.Now

// Notifier interface for sending notifications
type Notifier interface {
	SendStreakReminder(ctx context.Context, profile models.Profile, streak int) error
}

// Profiles lists the learners to check
type Profiles interface {
	GetAll(ctx context.Context) ([]models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Activities exposes the last active day of each learner
type Activities interface {
	Get(ctx context.Context, userID string) (*models.Activity, error)
	List(ctx context.Context) ([]models.Activity, error)
}

// Progress reads and mutates progression under the per-user lock
type Progress interface {
	Do(ctx context.Context, userID string, fn func(*progression.Store) error) error
	View(ctx context.Context, userID string) (models.ProgressionSnapshot, error)
}

// Options holds the scheduling window and timezone
type Options struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	notifier   Notifier
	profiles   Profiles
	activities Activities
	progress   Progress
	tracker    *streak.Tracker
	opts       Options
	logger     *zap.Logger
}

// New creates a new scheduler instance
func New(notifier Notifier, profiles Profiles, activities Activities, progress Progress, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(opts.Location)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		notifier:   notifier,
		profiles:   profiles,
		activities: activities,
		progress:   progress,
		tracker:    streak.NewTracker(opts.Location),
		opts:       opts,
		logger:     logger.Named("scheduler"),
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	// Streaks expire shortly after midnight
	if _, err := s.scheduler.Every(1).Day().At("00:05").Do(s.runRollover); err != nil {
		return fmt.Errorf("failed to schedule streak rollover: %w", err)
	}
	// Reminders go out at the top of each hour
	if _, err := s.scheduler.Cron("0 * * * *").Do(s.runReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.String("timezone", s.opts.Location.String()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runRollover() {
	n, err := s.RolloverStreaks(context.Background())
	if err != nil {
		s.logger.Error("streak rollover failed", zap.Error(err))
		return
	}
	s.logger.Info("streak rollover finished", zap.Int("reset", n))
}

func (s *Scheduler) runReminders() {
	if _, err := s.SendReminders(context.Background()); err != nil {
		s.logger.Error("sending reminders failed", zap.Error(err))
	}
}

// RolloverStreaks zeroes the streak of everyone who missed a whole day.
// It returns the number of streaks reset.
func (s *Scheduler) RolloverStreaks(ctx context.Context) (int, error) {
	now := timeNow()

	activities, err := s.activities.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list activity: %w", err)
	}

	reset := 0
	for _, a := range activities {
		if !s.tracker.Expired(a.LastActiveDay, now) {
			continue
		}
		var changed bool
		err := s.progress.Do(ctx, a.UserID, func(st *progression.Store) error {
			if st.Streak() == 0 {
				return nil
			}
			changed = true
			return st.SetStreak(0)
		})
		if err != nil {
			s.logger.Warn("failed to reset streak", zap.String("user", a.UserID), zap.Error(err))
			continue
		}
		if changed {
			reset++
		}
	}
	return reset, nil
}

// SendReminders notifies learners whose reminder hour is now and who were
// not active today. It returns the number of reminders sent.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	now := timeNow().In(s.opts.Location)
	currentHour := now.Hour()

	if currentHour < s.opts.StartHour || currentHour > s.opts.EndHour {
		s.logger.Debug("outside notification hours, skipping reminders",
			zap.Int("hour", currentHour),
			zap.Int("start", s.opts.StartHour),
			zap.Int("end", s.opts.EndHour))
		return 0, nil
	}

	profiles, err := s.profiles.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if p.NotificationHour != currentHour {
			continue
		}
		ok, err := s.remind(ctx, p, now)
		if err != nil {
			s.logger.Warn("failed to send reminder", zap.String("user", p.ID), zap.Error(err))
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// RunManualCheck forces a check for a specific user, ignoring the notification
// window. It reports whether a reminder was sent.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) (bool, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.remind(ctx, *p, timeNow())
}

func (s *Scheduler) remind(ctx context.Context, p models.Profile, now time.Time) (bool, error) {
	var lastActive string
	a, err := s.activities.Get(ctx, p.ID)
	switch {
	case err == nil:
		lastActive = a.LastActiveDay
	case !errors.Is(err, database.ErrNotFound):
		return false, err
	}
	if s.tracker.ActiveToday(lastActive, now) {
		return false, nil
	}

	snap, err := s.progress.View(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if err := s.notifier.SendStreakReminder(ctx, p, snap.Streak); err != nil {
		return false, err
	}
	return true, nil
}
