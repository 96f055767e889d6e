// Package checklist instantiates per-project checklists from the template
// catalog.
package checklist

import (
	"checklist-service/internal/catalog"
	"checklist-service/internal/model"
)

// Generate filters the template catalog by site type, technology and, when
// given, the applicable phase areas, and escalates weights one step for items
// in the site type's critical phases. The result is a pure function of the
// catalog and its inputs: calling it twice with the same arguments yields the
// same list.
func Generate(siteType, technology string, applicableAreas []string) []model.ChecklistItem {
	var items []model.ChecklistItem

	for _, tpl := range catalog.Templates() {
		if !tagMatches(tpl.Technologies, technology) {
			continue
		}
		if !tagMatches(tpl.SiteTypes, siteType) {
			continue
		}
		if len(applicableAreas) > 0 && !contains(applicableAreas, tpl.Phase) {
			continue
		}

		weight := tpl.Weight
		if catalog.IsCriticalPhase(siteType, tpl.Phase) {
			// One step only: medium→high, high→critical. No double escalation.
			weight = weight.Escalate()
		}

		items = append(items, model.ChecklistItem{
			Phase:        tpl.Phase,
			Title:        tpl.Title,
			Description:  tpl.Description,
			Weight:       weight,
			Order:        tpl.Order,
			Status:       model.ItemStatusPending,
			Technologies: tpl.Technologies,
			SiteTypes:    tpl.SiteTypes,
		})
	}

	return items
}

func tagMatches(tags []string, value string) bool {
	for _, t := range tags {
		if t == catalog.TagAll || t == value {
			return true
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
