package catalog

import (
	"context"
	"testing"

	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomains(t *testing.T) {
	all := Domains()
	assert.Len(t, all, 10)

	d, ok := DomainByID("psychiatry")
	require.True(t, ok)
	assert.Equal(t, models.SpecialtyClinicalMedicine, d.Specialty)

	_, ok = DomainByID("astrology")
	assert.False(t, ok)

	assert.Len(t, DomainsBySpecialty(models.SpecialtyBasicSciences), 4)
	assert.Len(t, DomainsBySpecialty(models.SpecialtyClinicalMedicine), 6)

	// Callers get a copy
	all[0].Name = "changed"
	assert.Equal(t, "Human Anatomy", Domains()[0].Name)
}

func TestSeedData_Consistent(t *testing.T) {
	ids := map[string]bool{}
	decks := map[string]bool{}
	for _, it := range Items() {
		assert.False(t, ids[it.ID], "duplicate item %s", it.ID)
		ids[it.ID] = true
		_, ok := DomainByID(it.DomainID)
		assert.True(t, ok, "item %s has unknown domain %s", it.ID, it.DomainID)
		assert.Positive(t, it.XPReward)
		if it.Kind == models.KindDeck {
			decks[it.ID] = true
		}
	}

	perDeck := map[string]int{}
	for _, c := range Flashcards() {
		assert.True(t, decks[c.DeckID], "card %s has unknown deck %s", c.ID, c.DeckID)
		perDeck[c.DeckID]++
	}
	for deck := range decks {
		assert.GreaterOrEqual(t, perDeck[deck], 3, "deck %s", deck)
	}
	assert.GreaterOrEqual(t, len(Flashcards()), 10)
}

func TestFilter(t *testing.T) {
	items := Items()

	cases := Filter(items, Query{Kind: models.KindCase})
	assert.Len(t, cases, 4)

	adv := Filter(items, Query{Kind: models.KindCase, Difficulty: models.DifficultyAdvanced})
	assert.Len(t, adv, 2)

	peds := Filter(items, Query{DomainID: "pediatrics"})
	assert.Len(t, peds, 2)

	found := Filter(items, Query{Search: "CHEST"})
	require.Len(t, found, 2)
	assert.Equal(t, "chest-pain", found[0].ID)

	assert.Empty(t, Filter(items, Query{Search: "dermatology"}))
	assert.Len(t, Filter(items, Query{}), len(items))
}

func TestSortBy(t *testing.T) {
	items := Filter(Items(), Query{Kind: models.KindCase})

	require.NoError(t, SortBy(items, SortByReward))
	assert.Equal(t, "sudden-headache", items[0].ID)
	assert.Equal(t, "pediatric-fever", items[3].ID)

	require.NoError(t, SortBy(items, SortByDifficulty))
	assert.Equal(t, "pediatric-fever", items[0].ID)
	// Equal difficulty falls back to ID
	assert.Equal(t, "polytrauma", items[2].ID)
	assert.Equal(t, "sudden-headache", items[3].ID)

	require.NoError(t, SortBy(items, SortByTitle))
	assert.Equal(t, "Acute Chest Pain Assessment", items[0].Title)

	assert.Error(t, SortBy(items, "colour"))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Options{Type: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	repo := database.NewCatalogRepository(db)

	res, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(Items()), res.Created)
	assert.Zero(t, res.Updated)
	assert.Equal(t, len(Flashcards()), res.Flashcards)

	res, err = Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, len(Items()), res.Updated)

	cards, err := repo.FlashcardsByDeck(ctx, "neuroanatomy")
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}
