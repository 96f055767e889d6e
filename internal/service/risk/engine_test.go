package risk

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist-service/internal/model"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func item(weight model.Weight, status string) model.ChecklistItem {
	return model.ChecklistItem{Weight: weight, Status: status}
}

func completedItems(n int) []model.ChecklistItem {
	items := make([]model.ChecklistItem, n)
	for i := range items {
		items[i] = item(model.WeightMedium, model.ItemStatusCompleted)
	}
	return items
}

func TestEmptyChecklistIsLowWithFallbackReason(t *testing.T) {
	a := AssessAt(nil, nil, &model.Project{}, now)

	assert.Equal(t, model.RiskLow, a.Level)
	assert.Zero(t, a.CompletionRate)
	assert.True(t, a.CanDeliver)
	assert.Equal(t, []string{"Proyecto en buen estado"}, a.Reasons)
	assert.Equal(t, []string{"Continuar con el plan actual"}, a.Recommendations)
}

func TestCriticalPendingForcesHighAndBlocksDelivery(t *testing.T) {
	items := append(completedItems(10), item(model.WeightCritical, model.ItemStatusPending))

	a := AssessAt(items, nil, &model.Project{}, now)

	assert.Equal(t, model.RiskHigh, a.Level)
	assert.False(t, a.CanDeliver)
	assert.Equal(t, 1, a.CriticalPending)
	assert.Contains(t, a.Reasons, "1 ítem(s) crítico(s) pendiente(s)")
	assert.Contains(t, a.Recommendations, "Completar todos los ítems críticos antes de entregar")
}

func TestConflictsElevateLevel(t *testing.T) {
	conflicts := []model.Conflict{
		{Status: model.ConflictStatusOpen},
		{Status: model.ConflictStatusResolved},
	}

	// Without prior elevation, open conflicts give medium.
	a := AssessAt(completedItems(10), conflicts, &model.Project{}, now)
	assert.Equal(t, model.RiskMedium, a.Level)
	assert.Equal(t, 1, a.Conflicts)
	assert.Contains(t, a.Reasons, "1 conflicto(s) sin resolver")
	assert.False(t, a.CanDeliver)

	// With a critical pending beforehand, conflicts keep high.
	items := append(completedItems(10), item(model.WeightCritical, model.ItemStatusPending))
	a = AssessAt(items, conflicts, &model.Project{}, now)
	assert.Equal(t, model.RiskHigh, a.Level)
}

func TestManyHighPendingRaisesLowToMediumOnly(t *testing.T) {
	items := completedItems(10)
	for i := 0; i < 4; i++ {
		items = append(items, item(model.WeightHigh, model.ItemStatusPending))
	}

	a := AssessAt(items, nil, &model.Project{}, now)
	assert.Equal(t, model.RiskMedium, a.Level)
	assert.Equal(t, 4, a.HighPending)
	// High-weight pendings alone never block delivery.
	assert.True(t, a.CanDeliver)
}

func TestExactlyThreeHighPendingDoesNotTrigger(t *testing.T) {
	items := completedItems(10)
	for i := 0; i < 3; i++ {
		items = append(items, item(model.WeightHigh, model.ItemStatusPending))
	}

	a := AssessAt(items, nil, &model.Project{}, now)
	assert.Equal(t, model.RiskLow, a.Level)
}

func TestLowCompletionRaisesMedium(t *testing.T) {
	items := []model.ChecklistItem{
		item(model.WeightMedium, model.ItemStatusCompleted),
		item(model.WeightMedium, model.ItemStatusPending),
		item(model.WeightMedium, model.ItemStatusPending),
	}

	a := AssessAt(items, nil, &model.Project{}, now)
	assert.Equal(t, model.RiskMedium, a.Level)
	assert.InDelta(t, 33.3, a.CompletionRate, 0.1)
	assert.Contains(t, a.Reasons, "Menos del 50% del checklist completado")
}

func TestOverdueTargetDateForcesHigh(t *testing.T) {
	past := now.AddDate(0, 0, -2)
	a := AssessAt(completedItems(10), nil, &model.Project{TargetDate: &past}, now)

	assert.Equal(t, model.RiskHigh, a.Level)
	assert.Contains(t, a.Reasons, "Fecha de entrega vencida")
	// Date pressure does not block delivery by itself.
	assert.True(t, a.CanDeliver)
}

func TestImminentDateWithLowCompletionRaisesMedium(t *testing.T) {
	target := now.Add(48 * time.Hour)
	items := []model.ChecklistItem{
		item(model.WeightMedium, model.ItemStatusCompleted),
		item(model.WeightMedium, model.ItemStatusCompleted),
		item(model.WeightMedium, model.ItemStatusCompleted),
		item(model.WeightMedium, model.ItemStatusPending),
	}

	a := AssessAt(items, nil, &model.Project{TargetDate: &target}, now)
	assert.Equal(t, model.RiskMedium, a.Level)
	assert.Contains(t, a.Reasons, "Quedan 2 día(s) para la entrega")
}

func TestImminentDateWithHighCompletionIsQuiet(t *testing.T) {
	target := now.Add(48 * time.Hour)
	items := append(completedItems(9), item(model.WeightLow, model.ItemStatusPending))

	a := AssessAt(items, nil, &model.Project{TargetDate: &target}, now)
	assert.Equal(t, model.RiskLow, a.Level)
	assert.Equal(t, []string{"Proyecto en buen estado"}, a.Reasons)
}

func TestCanDeliverIndependentOfLevel(t *testing.T) {
	// Lots of pending work, no criticals, no conflicts: risky but deliverable.
	items := completedItems(2)
	for i := 0; i < 6; i++ {
		items = append(items, item(model.WeightHigh, model.ItemStatusPending))
	}

	a := AssessAt(items, nil, &model.Project{}, now)
	assert.NotEqual(t, model.RiskLow, a.Level)
	assert.True(t, a.CanDeliver)
}

func TestReasonOrderFollowsEvaluationOrder(t *testing.T) {
	past := now.AddDate(0, 0, -1)
	items := []model.ChecklistItem{
		item(model.WeightCritical, model.ItemStatusPending),
		item(model.WeightHigh, model.ItemStatusPending),
		item(model.WeightHigh, model.ItemStatusPending),
		item(model.WeightHigh, model.ItemStatusPending),
		item(model.WeightHigh, model.ItemStatusInProgress),
	}
	conflicts := []model.Conflict{{Status: model.ConflictStatusOpen}}

	a := AssessAt(items, conflicts, &model.Project{TargetDate: &past}, now)

	expected := []string{
		"1 ítem(s) crítico(s) pendiente(s)",
		"1 conflicto(s) sin resolver",
		"4 ítems de peso alto pendientes",
		"Menos del 50% del checklist completado",
		"Fecha de entrega vencida",
	}
	require.Equal(t, expected, a.Reasons)
	assert.Len(t, a.Recommendations, len(expected))
	assert.Equal(t, model.RiskHigh, a.Level)
	assert.False(t, a.CanDeliver)
}

func TestInProgressAndConflictCountAsPending(t *testing.T) {
	for _, status := range []string{model.ItemStatusPending, model.ItemStatusInProgress, model.ItemStatusConflict} {
		items := append(completedItems(10), item(model.WeightCritical, status))
		a := AssessAt(items, nil, &model.Project{}, now)
		assert.Equal(t, 1, a.CriticalPending, fmt.Sprintf("status %s should count as pending", status))
		assert.False(t, a.CanDeliver)
	}
}
