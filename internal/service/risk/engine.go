// Package risk derives a project's delivery risk from its checklist items,
// open conflicts and target date.
package risk

import (
	"fmt"
	"math"
	"time"

	"checklist-service/internal/model"
	"checklist-service/pkg/metrics"
)

// Assess computes the risk assessment as of now. The assessment is derived
// state: it is recomputed on every read and never persisted.
func Assess(items []model.ChecklistItem, conflicts []model.Conflict, project *model.Project) model.RiskAssessment {
	return AssessAt(items, conflicts, project, time.Now())
}

// AssessAt computes the risk assessment relative to a reference time. The
// checks run in a fixed order so reasons and recommendations come out in a
// stable sequence; the final level is the maximum severity any check reached.
func AssessAt(items []model.ChecklistItem, conflicts []model.Conflict, project *model.Project, now time.Time) model.RiskAssessment {
	assessment := model.RiskAssessment{
		Level:           model.RiskLow,
		Reasons:         []string{},
		Recommendations: []string{},
	}

	completed := 0
	for _, item := range items {
		if item.Status == model.ItemStatusCompleted {
			completed++
		}
		if item.Status != model.ItemStatusCompleted {
			switch item.Weight {
			case model.WeightCritical:
				assessment.CriticalPending++
			case model.WeightHigh:
				assessment.HighPending++
			}
		}
	}

	if len(items) > 0 {
		assessment.CompletionRate = float64(completed) / float64(len(items)) * 100
	}

	for _, c := range conflicts {
		if c.Status == model.ConflictStatusOpen {
			assessment.Conflicts++
		}
	}

	if assessment.CriticalPending > 0 {
		assessment.Level = assessment.Level.Max(model.RiskHigh)
		assessment.Reasons = append(assessment.Reasons,
			fmt.Sprintf("%d ítem(s) crítico(s) pendiente(s)", assessment.CriticalPending))
		assessment.Recommendations = append(assessment.Recommendations,
			"Completar todos los ítems críticos antes de entregar")
	}

	if assessment.Conflicts > 0 {
		if assessment.Level != model.RiskLow {
			assessment.Level = model.RiskHigh
		} else {
			assessment.Level = model.RiskMedium
		}
		assessment.Reasons = append(assessment.Reasons,
			fmt.Sprintf("%d conflicto(s) sin resolver", assessment.Conflicts))
		assessment.Recommendations = append(assessment.Recommendations,
			"Resolver conflictos con el líder web")
	}

	if assessment.HighPending > 3 {
		// Raises low to medium only; never downgrades an existing high.
		if assessment.Level == model.RiskLow {
			assessment.Level = model.RiskMedium
		}
		assessment.Reasons = append(assessment.Reasons,
			fmt.Sprintf("%d ítems de peso alto pendientes", assessment.HighPending))
		assessment.Recommendations = append(assessment.Recommendations,
			"Priorizar los ítems de peso alto antes de avanzar de fase")
	}

	// An empty checklist reads as 0% complete but does not by itself raise
	// the level; the completion-rate rule needs actual items.
	if len(items) > 0 && assessment.CompletionRate < 50 {
		if assessment.Level == model.RiskLow {
			assessment.Level = model.RiskMedium
		}
		assessment.Reasons = append(assessment.Reasons,
			"Menos del 50% del checklist completado")
		assessment.Recommendations = append(assessment.Recommendations,
			"Acelerar el avance del checklist")
	}

	if project != nil && project.TargetDate != nil {
		daysRemaining := int(math.Ceil(project.TargetDate.Sub(now).Hours() / 24))
		if daysRemaining < 0 {
			assessment.Level = model.RiskHigh
			assessment.Reasons = append(assessment.Reasons, "Fecha de entrega vencida")
			assessment.Recommendations = append(assessment.Recommendations,
				"Renegociar la fecha de entrega con el cliente")
		} else if daysRemaining < 3 && assessment.CompletionRate < 80 {
			if assessment.Level == model.RiskLow {
				assessment.Level = model.RiskMedium
			}
			assessment.Reasons = append(assessment.Reasons,
				fmt.Sprintf("Quedan %d día(s) para la entrega", daysRemaining))
			assessment.Recommendations = append(assessment.Recommendations,
				"Enfocar el equipo en los ítems críticos")
		}
	}

	if len(assessment.Reasons) == 0 {
		assessment.Reasons = append(assessment.Reasons, "Proyecto en buen estado")
		assessment.Recommendations = append(assessment.Recommendations, "Continuar con el plan actual")
	}

	// Delivery eligibility is independent of the computed level: pending
	// high-weight items alone do not block delivery.
	assessment.CanDeliver = assessment.CriticalPending == 0 && assessment.Conflicts == 0

	metrics.IncrementRiskAssessment(string(assessment.Level))
	return assessment
}
