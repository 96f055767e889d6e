// Package phases computes a project's effective phase list: the immutable
// catalog phases overlaid with the project's renames, hides and repositions.
package phases

import (
	"errors"
	"sort"

	"checklist-service/internal/catalog"
	"checklist-service/internal/model"
)

// ErrUnknownPhase is returned when an override references a phase the catalog
// does not define.
var ErrUnknownPhase = errors.New("unknown phase")

// View is one phase as a project sees it.
type View struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DefaultName string `json:"default_name"`
	Position    int    `json:"position"`
	Hidden      bool   `json:"hidden"`
}

// Effective merges the catalog phases with the project's overrides. Hidden
// phases are included with the flag set; filtering is a presentation decision.
func Effective(overrides map[string]model.PhaseOverride) []View {
	views := make([]View, 0, len(catalog.Phases()))
	for _, p := range catalog.Phases() {
		v := View{
			ID:          p.ID,
			Name:        p.Name,
			DefaultName: p.Name,
			Position:    p.Position,
		}
		if o, ok := overrides[p.ID]; ok {
			if o.CustomName != "" {
				v.Name = o.CustomName
			}
			v.Hidden = o.Hidden
			if o.Position != nil {
				v.Position = *o.Position
			}
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Position < views[j].Position
	})
	return views
}

// Rename sets a custom display name for a phase. An empty name restores the
// catalog default.
func Rename(overrides map[string]model.PhaseOverride, phaseID, customName string) (map[string]model.PhaseOverride, error) {
	if _, ok := catalog.PhaseByID(phaseID); !ok {
		return nil, ErrUnknownPhase
	}
	out := clone(overrides)
	o := out[phaseID]
	o.CustomName = customName
	out[phaseID] = o
	return out, nil
}

// SetHidden hides or shows a phase. The underlying catalog phase and its items
// are untouched.
func SetHidden(overrides map[string]model.PhaseOverride, phaseID string, hidden bool) (map[string]model.PhaseOverride, error) {
	if _, ok := catalog.PhaseByID(phaseID); !ok {
		return nil, ErrUnknownPhase
	}
	out := clone(overrides)
	o := out[phaseID]
	o.Hidden = hidden
	out[phaseID] = o
	return out, nil
}

// Reorder assigns positions following the given phase ID sequence. Every ID
// must be a catalog phase. Phases left out of the sequence follow after the
// listed ones, in catalog order, so positions never collide.
func Reorder(overrides map[string]model.PhaseOverride, orderedIDs []string) (map[string]model.PhaseOverride, error) {
	out := clone(overrides)
	listed := make(map[string]bool, len(orderedIDs))
	for index, id := range orderedIDs {
		if _, ok := catalog.PhaseByID(id); !ok {
			return nil, ErrUnknownPhase
		}
		o := out[id]
		position := index + 1
		o.Position = &position
		out[id] = o
		listed[id] = true
	}

	next := len(orderedIDs) + 1
	for _, p := range catalog.Phases() {
		if listed[p.ID] {
			continue
		}
		o := out[p.ID]
		position := next
		o.Position = &position
		out[p.ID] = o
		next++
	}
	return out, nil
}

func clone(overrides map[string]model.PhaseOverride) map[string]model.PhaseOverride {
	out := make(map[string]model.PhaseOverride, len(overrides))
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
