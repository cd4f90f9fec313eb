package cli

import (
	"context"
	"fmt"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/mentor"
	"github.com/example/novalearn/internal/session"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// environment is everything a command needs to talk to the stores
type environment struct {
	db    *sqlx.DB
	cache *session.RedisStore
	svc   *app.Service
}

func openEnvironment(ctx context.Context) (*environment, error) {
	db, err := database.Connect(database.Options{
		Type:       cfg.Database.Type,
		SQLitePath: cfg.Database.SQLitePath,
		URL:        cfg.Database.URL,
	})
	if err != nil {
		return nil, err
	}
	env := &environment{db: db}

	ladder, err := cfg.Ladder()
	if err != nil {
		env.Close()
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []session.Option{session.WithLogger(logger), session.WithLadder(ladder)}
	if cfg.Redis.URL != "" {
		cache, err := session.NewRedisStore(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		env.cache = cache
		opts = append(opts, session.WithCache(cache))
	}
	sessions := session.NewManager(database.NewProgressionRepository(db), opts...)

	env.svc = app.NewService(app.Deps{
		DB:       db,
		Sessions: sessions,
		Mentor:   newMentor(ctx),
		Location: loc,
		Logger:   logger,
	})
	return env, nil
}

// newMentor uses Gemini when a key is configured and canned answers otherwise
func newMentor(ctx context.Context) *mentor.Mentor {
	var gen mentor.Generator
	if mentor.ValidAPIKey(cfg.Gemini.APIKey) {
		g, err := mentor.NewGenAIGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("mentor model unavailable, using canned answers", zap.Error(err))
		} else {
			gen = g
		}
	}
	return mentor.New(gen, logger)
}

func (e *environment) catalog() *database.CatalogRepository {
	return database.NewCatalogRepository(e.db)
}

// Close releases the database and cache connections
func (e *environment) Close() {
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := e.db.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
