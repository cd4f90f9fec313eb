// Package session serializes progression updates per user and moves
// snapshots between the progression core and its backing stores.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/pkg/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned by a Persister that holds no snapshot for a user
var ErrNotFound = database.ErrNotFound

// Persister loads and stores progression snapshots
type Persister interface {
	Load(ctx context.Context, userID string) (*models.ProgressionSnapshot, error)
	Save(ctx context.Context, userID string, snap models.ProgressionSnapshot) error
	Delete(ctx context.Context, userID string) error
}

// Option configures a Manager
type Option func(*Manager)

// WithCache puts a read-through cache in front of the primary store
func WithCache(cache Persister) Option {
	return func(m *Manager) {
		m.cache = cache
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.Named("session")
		}
	}
}

// WithLadder sets the rank ladder of restored stores
func WithLadder(l progression.Ladder) Option {
	return func(m *Manager) {
		m.ladder = l
	}
}

// Manager runs progression mutations one user at a time
type Manager struct {
	primary Persister
	cache   Persister
	ladder  progression.Ladder
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager over the primary store
func NewManager(primary Persister, opts ...Option) *Manager {
	m := &Manager{
		primary: primary,
		ladder:  progression.DefaultLadder,
		logger:  zap.NewNop(),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) lock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// Do loads the user's store, runs fn on it and persists the result.
// Nothing is written when fn fails.
func (m *Manager) Do(ctx context.Context, userID string, fn func(*progression.Store) error) error {
	l := m.lock(userID)
	l.Lock()
	defer l.Unlock()

	store, err := m.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		return err
	}
	return m.save(ctx, userID, store.Snapshot())
}

// View returns the current snapshot of a user with derived fields filled in
func (m *Manager) View(ctx context.Context, userID string) (models.ProgressionSnapshot, error) {
	l := m.lock(userID)
	l.Lock()
	defer l.Unlock()

	store, err := m.load(ctx, userID)
	if err != nil {
		return models.ProgressionSnapshot{}, err
	}
	snap := store.Snapshot()
	snap.UserID = userID
	return snap, nil
}

// Drop forgets a user's progression in every store
func (m *Manager) Drop(ctx context.Context, userID string) error {
	l := m.lock(userID)
	l.Lock()
	defer l.Unlock()

	if m.cache != nil {
		if err := m.cache.Delete(ctx, userID); err != nil {
			m.logger.Warn("failed to evict cached snapshot", zap.String("user", userID), zap.Error(err))
		}
	}
	if err := m.primary.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete progression: %w", err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, userID string) (*progression.Store, error) {
	if m.cache != nil {
		snap, err := m.cache.Load(ctx, userID)
		switch {
		case err == nil:
			store, rerr := progression.Restore(*snap, progression.WithLadder(m.ladder))
			if rerr == nil {
				return store, nil
			}
			m.logger.Warn("discarding corrupt cached snapshot", zap.String("user", userID), zap.Error(rerr))
		case !errors.Is(err, ErrNotFound):
			m.logger.Warn("cache unavailable, reading primary", zap.String("user", userID), zap.Error(err))
		}
	}

	snap, err := m.primary.Load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return progression.New(progression.WithLadder(m.ladder)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progression: %w", err)
	}

	store, err := progression.Restore(*snap, progression.WithLadder(m.ladder))
	if err != nil {
		return nil, fmt.Errorf("failed to restore progression for %s: %w", userID, err)
	}

	if m.cache != nil {
		if err := m.cache.Save(ctx, userID, store.Snapshot()); err != nil {
			m.logger.Warn("failed to warm cache", zap.String("user", userID), zap.Error(err))
		}
	}
	return store, nil
}

func (m *Manager) save(ctx context.Context, userID string, snap models.ProgressionSnapshot) error {
	snap.UserID = userID
	if m.cache != nil {
		if err := m.cache.Save(ctx, userID, snap); err != nil {
			m.logger.Warn("failed to cache snapshot", zap.String("user", userID), zap.Error(err))
		}
	}

	if err := m.primary.Save(ctx, userID, snap); err != nil {
		if m.cache != nil {
			// The cache must not run ahead of the primary store
			if derr := m.cache.Delete(ctx, userID); derr != nil {
				m.logger.Error("failed to evict cached snapshot", zap.String("user", userID), zap.Error(derr))
			}
		}
		return fmt.Errorf("failed to save progression: %w", err)
	}

	m.logger.Debug("progression saved",
		zap.String("user", userID),
		zap.Int("total_xp", snap.TotalXP),
		zap.Int("level", snap.Level),
		zap.String("rank", snap.Rank))
	return nil
}
