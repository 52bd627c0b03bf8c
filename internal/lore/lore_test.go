package lore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 18, ds.Total())
	assert.Equal(t, 18, ds.UnlockedCount())
	assert.Equal(t, 100, ds.ProgressPercent())
}

func TestGetFallsBackToFirst(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "A Origem da Chama", ds.Get(1).Title)
	assert.Equal(t, "O Observador", ds.Get(12).Title)

	// Unknown ids show the opening fragment instead of erroring
	assert.Equal(t, 1, ds.Get(999).ID)
	assert.Equal(t, 1, ds.Get(-3).ID)
}

func TestFirstPerSubcategory(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, ds.First("lore", "historia"))
	assert.Equal(t, 10, ds.First("personagens", "guardioes"))
	assert.Equal(t, 20, ds.First("locais", ""))
	assert.Equal(t, 1, ds.First("inexistente", ""))
}

func TestRelatedResolution(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	templo := ds.Get(20)
	related := ds.Related(templo)
	require.Len(t, related, 2)
	assert.Equal(t, 1, related[0].ID)
	assert.Equal(t, 10, related[1].ID)

	assert.Empty(t, ds.Related(ds.Get(3)))
}

func TestBuildPage(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	page := ds.BuildPage(20)
	assert.Equal(t, "Templo Ancestral", page.Selected.Title)
	assert.Equal(t, "locais", page.ActiveCategory)
	assert.Equal(t, "templos", page.ActiveSub)
	assert.Len(t, page.ListItems, 1)
	assert.Len(t, page.RelatedItems, 2)

	assert.Equal(t, 1, page.MainLinks["lore"])
	assert.Equal(t, 10, page.MainLinks["personagens"])
	assert.Equal(t, 50, page.NavLinks["puzzles_facil"])

	assert.Equal(t, 3, page.Counts["historia"]+page.Counts["eventos"]+page.Counts["cronologia"])
	assert.Equal(t, 1, page.Counts["concept"])
	assert.Equal(t, 18, page.TotalItems)
}
