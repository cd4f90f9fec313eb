package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/novalearn/pkg/models"
	"github.com/jmoiron/sqlx"
)

const catalogColumns = "id, kind, title, description, domain_id, difficulty, xp_reward, estimated_time, skills"

// catalogRow carries the skills list as its stored JSON text
type catalogRow struct {
	models.CatalogItem
	SkillsJSON string `db:"skills"`
}

func (r catalogRow) item() (models.CatalogItem, error) {
	it := r.CatalogItem
	if r.SkillsJSON != "" {
		if err := json.Unmarshal([]byte(r.SkillsJSON), &it.Skills); err != nil {
			return it, fmt.Errorf("failed to decode skills of %s: %w", it.ID, err)
		}
	}
	return it, nil
}

// CatalogRepository handles database operations for catalog items and flashcards
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new repository instance
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Upsert inserts or replaces a catalog item and reports whether it was new
func (r *CatalogRepository) Upsert(ctx context.Context, item models.CatalogItem) (bool, error) {
	skills := item.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return false, fmt.Errorf("failed to encode skills: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM catalog_items WHERE id = ?`), item.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog item: %w", err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO catalog_items (`+catalogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			description = excluded.description,
			domain_id = excluded.domain_id,
			difficulty = excluded.difficulty,
			xp_reward = excluded.xp_reward,
			estimated_time = excluded.estimated_time,
			skills = excluded.skills`),
		item.ID, item.Kind, item.Title, item.Description, item.DomainID,
		item.Difficulty, item.XPReward, item.EstimatedTime, string(skillsJSON))
	if err != nil {
		return false, fmt.Errorf("failed to save catalog item %s: %w", item.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit catalog item: %w", err)
	}
	return exists == 0, nil
}

// GetByID returns a catalog item by ID
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.CatalogItem, error) {
	var row catalogRow
	query := r.db.Rebind(`SELECT ` + catalogColumns + ` FROM catalog_items WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get catalog item %s: %w", id, notFound(err))
	}
	it, err := row.item()
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns catalog items of one kind, or all items when kind is empty
func (r *CatalogRepository) List(ctx context.Context, kind models.ItemKind) ([]models.CatalogItem, error) {
	var (
		rows []catalogRow
		err  error
	)
	if kind == "" {
		err = r.db.SelectContext(ctx, &rows, `SELECT `+catalogColumns+` FROM catalog_items ORDER BY id`)
	} else {
		err = r.db.SelectContext(ctx, &rows,
			r.db.Rebind(`SELECT `+catalogColumns+` FROM catalog_items WHERE kind = ? ORDER BY id`), kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	items := make([]models.CatalogItem, 0, len(rows))
	for _, row := range rows {
		it, err := row.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// UpsertFlashcard inserts or replaces a flashcard. The deck must exist.
func (r *CatalogRepository) UpsertFlashcard(ctx context.Context, card models.Flashcard) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO flashcards (id, deck_id, question, answer, clinical_relevance)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			deck_id = excluded.deck_id,
			question = excluded.question,
			answer = excluded.answer,
			clinical_relevance = excluded.clinical_relevance`),
		card.ID, card.DeckID, card.Question, card.Answer, card.ClinicalRelevance)
	if err != nil {
		return fmt.Errorf("failed to save flashcard %s: %w", card.ID, err)
	}
	return nil
}

// GetFlashcard returns a flashcard by ID
func (r *CatalogRepository) GetFlashcard(ctx context.Context, id string) (*models.Flashcard, error) {
	var card models.Flashcard
	query := r.db.Rebind(`SELECT id, deck_id, question, answer, clinical_relevance FROM flashcards WHERE id = ?`)
	if err := r.db.GetContext(ctx, &card, query, id); err != nil {
		return nil, fmt.Errorf("failed to get flashcard %s: %w", id, notFound(err))
	}
	return &card, nil
}

// FlashcardsByDeck returns the cards of a deck in ID order
func (r *CatalogRepository) FlashcardsByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	cards := []models.Flashcard{}
	query := r.db.Rebind(`
		SELECT id, deck_id, question, answer, clinical_relevance
		FROM flashcards WHERE deck_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, fmt.Errorf("failed to get flashcards: %w", err)
	}
	return cards, nil
}

// IsNotFound reports whether err is a missing-row error from this package
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
