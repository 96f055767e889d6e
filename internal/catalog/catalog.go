// Package catalog holds the static delivery-checklist definitions: phases,
// site type configurations and the master list of checklist item templates.
// Everything here is immutable catalog data; per-project customization lives
// on the Project entity.
package catalog

import "checklist-service/internal/model"

// TagAll marks a template applicable to every technology or site type.
const TagAll = "all"

// Phase is a named stage of project delivery.
type Phase struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// SiteTypeConfig describes one supported kind of site and which phases are
// weight-escalated for it.
type SiteTypeConfig struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	CriticalPhases []string `json:"critical_phases"`
}

// ItemTemplate is one master checklist entry with applicability tags.
type ItemTemplate struct {
	Phase        string       `json:"phase"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Weight       model.Weight `json:"weight"`
	Technologies []string     `json:"technologies"`
	SiteTypes    []string     `json:"site_types"`
	Order        int          `json:"order"`
}

var phases = []Phase{
	{ID: "documentation", Name: "Documentación", Position: 1},
	{ID: "design", Name: "Diseño", Position: 2},
	{ID: "development", Name: "Desarrollo", Position: 3},
	{ID: "performance", Name: "Rendimiento", Position: 4},
	{ID: "security", Name: "Seguridad", Position: 5},
	{ID: "qa", Name: "QA", Position: 6},
	{ID: "deployment", Name: "Despliegue", Position: 7},
}

var siteTypes = map[string]SiteTypeConfig{
	"ecommerce": {
		Key:            "ecommerce",
		Name:           "Tienda online",
		CriticalPhases: []string{"performance", "qa", "security"},
	},
	"landing": {
		Key:            "landing",
		Name:           "Landing page",
		CriticalPhases: []string{"design", "performance"},
	},
	"corporate": {
		Key:            "corporate",
		Name:           "Sitio corporativo",
		CriticalPhases: []string{"documentation", "qa"},
	},
	"blog": {
		Key:            "blog",
		Name:           "Blog",
		CriticalPhases: []string{"design"},
	},
	"webapp": {
		Key:            "webapp",
		Name:           "Aplicación web",
		CriticalPhases: []string{"development", "security", "qa"},
	},
}

// Phases returns the catalog phases in display order.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

// PhaseByID resolves a phase by identifier.
func PhaseByID(id string) (Phase, bool) {
	for _, p := range phases {
		if p.ID == id {
			return p, true
		}
	}
	return Phase{}, false
}

// SiteTypes returns the supported site type configurations keyed by site type.
func SiteTypes() map[string]SiteTypeConfig {
	out := make(map[string]SiteTypeConfig, len(siteTypes))
	for k, v := range siteTypes {
		out[k] = v
	}
	return out
}

// CriticalPhasesFor returns the critical-phase list of a site type, or nil for
// an unknown one.
func CriticalPhasesFor(siteType string) []string {
	cfg, ok := siteTypes[siteType]
	if !ok {
		return nil
	}
	out := make([]string, len(cfg.CriticalPhases))
	copy(out, cfg.CriticalPhases)
	return out
}

// IsCriticalPhase reports whether phase is critical for the given site type.
func IsCriticalPhase(siteType, phase string) bool {
	for _, p := range CriticalPhasesFor(siteType) {
		if p == phase {
			return true
		}
	}
	return false
}

// Templates returns the master checklist template list in catalog order.
func Templates() []ItemTemplate {
	out := make([]ItemTemplate, len(templates))
	copy(out, templates)
	return out
}
