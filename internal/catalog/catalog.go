// Package catalog holds the static learning domains and seed content, and
// the pure helpers used to browse catalog items.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/example/novalearn/pkg/models"
)

// Domains returns every learning domain in display order
func Domains() []models.Domain {
	out := make([]models.Domain, len(domains))
	copy(out, domains)
	return out
}

// DomainByID looks a domain up by its ID
func DomainByID(id string) (models.Domain, bool) {
	for _, d := range domains {
		if d.ID == id {
			return d, true
		}
	}
	return models.Domain{}, false
}

// DomainsBySpecialty returns the domains of one specialty
func DomainsBySpecialty(s models.Specialty) []models.Domain {
	var out []models.Domain
	for _, d := range domains {
		if d.Specialty == s {
			out = append(out, d)
		}
	}
	return out
}

// Items returns the built-in catalog items
func Items() []models.CatalogItem {
	out := make([]models.CatalogItem, len(seedItems))
	copy(out, seedItems)
	return out
}

// Flashcards returns the built-in flashcards
func Flashcards() []models.Flashcard {
	out := make([]models.Flashcard, len(seedCards))
	copy(out, seedCards)
	return out
}

// Query narrows a list of items. Zero fields match everything.
type Query struct {
	DomainID   string
	Kind       models.ItemKind
	Difficulty models.Difficulty
	Search     string // case-insensitive match on title and description
}

// Filter returns the items matching q, keeping their order
func Filter(items []models.CatalogItem, q Query) []models.CatalogItem {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if q.DomainID != "" && it.DomainID != q.DomainID {
			continue
		}
		if q.Kind != "" && it.Kind != q.Kind {
			continue
		}
		if q.Difficulty != "" && it.Difficulty != q.Difficulty {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Title), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SortField selects the ordering of SortBy
type SortField string

const (
	SortByReward     SortField = "reward"
	SortByDifficulty SortField = "difficulty"
	SortByTitle      SortField = "title"
)

// SortBy sorts items in place. Reward sorts highest first; ties fall back to ID.
func SortBy(items []models.CatalogItem, field SortField) error {
	var less func(a, b models.CatalogItem) bool
	switch field {
	case SortByReward:
		less = func(a, b models.CatalogItem) bool { return a.XPReward > b.XPReward }
	case SortByDifficulty:
		less = func(a, b models.CatalogItem) bool { return a.Difficulty.Order() < b.Difficulty.Order() }
	case SortByTitle:
		less = func(a, b models.CatalogItem) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return fmt.Errorf("unknown sort field %q", field)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if less(items[i], items[j]) {
			return true
		}
		if less(items[j], items[i]) {
			return false
		}
		return items[i].ID < items[j].ID
	})
	return nil
}

// Writer stores catalog content
type Writer interface {
	Upsert(ctx context.Context, item models.CatalogItem) (bool, error)
	UpsertFlashcard(ctx context.Context, card models.Flashcard) error
}

// SeedResult counts what Seed wrote
type SeedResult struct {
	Created    int
	Updated    int
	Flashcards int
}

// Seed writes the built-in items and flashcards. Running it again updates in place.
func Seed(ctx context.Context, w Writer) (SeedResult, error) {
	var res SeedResult
	for _, it := range seedItems {
		created, err := w.Upsert(ctx, it)
		if err != nil {
			return res, fmt.Errorf("failed to seed %s: %w", it.ItemKey(), err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	for _, c := range seedCards {
		if err := w.UpsertFlashcard(ctx, c); err != nil {
			return res, fmt.Errorf("failed to seed flashcard %s: %w", c.ID, err)
		}
		res.Flashcards++
	}
	return res, nil
}
