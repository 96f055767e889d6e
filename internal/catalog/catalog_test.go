package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-service/internal/model"
)

func TestPhasesAreOrderedAndUnique(t *testing.T) {
	seen := map[string]bool{}
	lastPos := 0
	for _, p := range Phases() {
		assert.False(t, seen[p.ID], "duplicate phase id %s", p.ID)
		seen[p.ID] = true
		assert.Greater(t, p.Position, lastPos, "phase %s out of order", p.ID)
		lastPos = p.Position
		assert.NotEmpty(t, p.Name)
	}
}

func TestEveryTemplateReferencesAKnownPhase(t *testing.T) {
	validWeights := map[model.Weight]bool{
		model.WeightLow: true, model.WeightMedium: true,
		model.WeightHigh: true, model.WeightCritical: true,
	}

	for _, tpl := range Templates() {
		_, ok := PhaseByID(tpl.Phase)
		require.True(t, ok, "template %q references unknown phase %q", tpl.Title, tpl.Phase)
		assert.True(t, validWeights[tpl.Weight], "template %q has invalid weight %q", tpl.Title, tpl.Weight)
		assert.NotEmpty(t, tpl.Technologies, "template %q has no technology tags", tpl.Title)
		assert.NotEmpty(t, tpl.SiteTypes, "template %q has no site type tags", tpl.Title)
		assert.Greater(t, tpl.Order, 0)
	}
}

func TestSiteTypeCriticalPhasesExist(t *testing.T) {
	for key, cfg := range SiteTypes() {
		require.NotEmpty(t, cfg.CriticalPhases, "site type %s has no critical phases", key)
		for _, phase := range cfg.CriticalPhases {
			_, ok := PhaseByID(phase)
			assert.True(t, ok, "site type %s declares unknown critical phase %s", key, phase)
		}
	}
}

func TestEcommerceCriticalPhases(t *testing.T) {
	critical := CriticalPhasesFor("ecommerce")
	assert.ElementsMatch(t, []string{"performance", "qa", "security"}, critical)

	assert.True(t, IsCriticalPhase("ecommerce", "qa"))
	assert.False(t, IsCriticalPhase("ecommerce", "design"))
	assert.True(t, IsCriticalPhase("landing", "design"))
}

func TestUnknownSiteTypeHasNoCriticalPhases(t *testing.T) {
	assert.Nil(t, CriticalPhasesFor("intranet"))
	assert.False(t, IsCriticalPhase("intranet", "qa"))
}

func TestTemplatesAreCopies(t *testing.T) {
	a := Templates()
	a[0].Title = "mutated"
	b := Templates()
	assert.NotEqual(t, "mutated", b[0].Title, "Templates must return a defensive copy")
}
