package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-service/internal/model"
)

func TestEffectiveWithoutOverridesMatchesCatalog(t *testing.T) {
	views := Effective(nil)
	require.Len(t, views, 7)
	assert.Equal(t, "documentation", views[0].ID)
	assert.Equal(t, "Documentación", views[0].Name)
	assert.Equal(t, "deployment", views[6].ID)
	for _, v := range views {
		assert.False(t, v.Hidden)
		assert.Equal(t, v.DefaultName, v.Name)
	}
}

func TestRenameOverridesDisplayNameOnly(t *testing.T) {
	overrides, err := Rename(nil, "qa", "Control de calidad")
	require.NoError(t, err)

	views := Effective(overrides)
	for _, v := range views {
		if v.ID == "qa" {
			assert.Equal(t, "Control de calidad", v.Name)
			assert.Equal(t, "QA", v.DefaultName)
		}
	}
}

func TestRenameUnknownPhaseFails(t *testing.T) {
	_, err := Rename(nil, "marketing", "x")
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestSetHiddenKeepsPhaseInList(t *testing.T) {
	overrides, err := SetHidden(nil, "design", true)
	require.NoError(t, err)

	views := Effective(overrides)
	require.Len(t, views, 7)
	for _, v := range views {
		if v.ID == "design" {
			assert.True(t, v.Hidden)
		}
	}
}

func TestReorderMovesListedPhasesFirst(t *testing.T) {
	overrides, err := Reorder(nil, []string{"qa", "security"})
	require.NoError(t, err)

	views := Effective(overrides)
	assert.Equal(t, "qa", views[0].ID)
	assert.Equal(t, "security", views[1].ID)
}

func TestReorderKeepsUnlistedPhasesInCatalogOrder(t *testing.T) {
	overrides, err := Reorder(nil, []string{"deployment", "qa"})
	require.NoError(t, err)

	views := Effective(overrides)
	ids := make([]string, len(views))
	positions := map[int]bool{}
	for i, v := range views {
		ids[i] = v.ID
		assert.False(t, positions[v.Position], "position %d assigned twice", v.Position)
		positions[v.Position] = true
	}
	assert.Equal(t, []string{
		"deployment", "qa",
		"documentation", "design", "development", "performance", "security",
	}, ids)
}

func TestReorderRejectsUnknownPhase(t *testing.T) {
	_, err := Reorder(nil, []string{"qa", "ghost"})
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestOverrideOperationsDoNotMutateInput(t *testing.T) {
	original := map[string]model.PhaseOverride{
		"qa": {CustomName: "Calidad"},
	}
	_, err := SetHidden(original, "qa", true)
	require.NoError(t, err)
	assert.False(t, original["qa"].Hidden)
}
