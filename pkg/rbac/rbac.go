package rbac

import (
	"fmt"

	"checklist-service/pkg/metrics"
)

// Action enumerates the checklist operations subject to gating.
type Action string

const (
	ActionCompleteItem  Action = "complete_item"
	ActionEditItem      Action = "edit_item"
	ActionAddItem       Action = "add_item"
	ActionDeleteItem    Action = "delete_item"
	ActionReorderItems  Action = "reorder_items"
	ActionRenamePhase   Action = "rename_phase"
	ActionHidePhase     Action = "hide_phase"
	ActionReorderPhases Action = "reorder_phases"
)

// Role keys. The table is data driven, so new roles only need a config change.
const (
	RoleDeveloper     = "developer"
	RoleQA            = "qa"
	RoleWebLeader     = "web_leader"
	RoleProductOwner  = "product_owner"
	RoleAdministrador = "administrador"
)

// PhaseAll marks a capability that covers every phase.
const PhaseAll = "all"

// Capability describes what a role may do and where.
type Capability struct {
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Leader      bool     `yaml:"leader" json:"leader"`
	Phases      []string `yaml:"phases" json:"phases"`
}

// CoversPhase reports whether the capability's phase set includes the phase.
func (c Capability) CoversPhase(phase string) bool {
	for _, p := range c.Phases {
		if p == PhaseAll || p == phase {
			return true
		}
	}
	return false
}

// Session carries the authenticated identity plus the acting role chosen in the
// UI. The acting role is deliberately independent of the stored identity role,
// so it is passed explicitly instead of read from ambient state.
type Session struct {
	Email    string
	FullName string
	Role     string
}

// Gate answers permission questions against a role capability table.
type Gate struct {
	capabilities map[string]Capability
}

// DefaultCapabilities returns the built-in role table.
func DefaultCapabilities() map[string]Capability {
	return map[string]Capability{
		RoleDeveloper: {
			DisplayName: "Desarrollador",
			Leader:      false,
			Phases:      []string{"development", "performance"},
		},
		RoleQA: {
			DisplayName: "QA",
			Leader:      false,
			Phases:      []string{"qa", "security"},
		},
		RoleWebLeader: {
			DisplayName: "Líder Web",
			Leader:      true,
			Phases:      []string{PhaseAll},
		},
		RoleProductOwner: {
			DisplayName: "Product Owner",
			Leader:      true,
			Phases:      []string{"documentation", "design"},
		},
		RoleAdministrador: {
			DisplayName: "Administrador",
			Leader:      true,
			Phases:      []string{PhaseAll},
		},
	}
}

// NewGate creates a gate with the built-in role table.
func NewGate() *Gate {
	return NewGateWithCapabilities(DefaultCapabilities())
}

// NewGateWithCapabilities creates a gate over a loaded role table. An empty or
// nil table falls back to the built-in one.
func NewGateWithCapabilities(capabilities map[string]Capability) *Gate {
	if len(capabilities) == 0 {
		capabilities = DefaultCapabilities()
	}
	return &Gate{capabilities: capabilities}
}

// Capability resolves the capability record for a role key.
func (g *Gate) Capability(role string) (Capability, bool) {
	c, ok := g.capabilities[role]
	return c, ok
}

// CanAct checks whether the session's acting role may perform action on items
// of the given phase. Returns nil when allowed, or one of the typed denial
// errors. Evaluation order matters:
//  1. web_leader may do everything everywhere.
//  2. unknown roles are rejected outright.
//  3. the phase must be in the role's phase set.
//  4. structural actions additionally require the leader flag; non-leader
//     roles may only mark items completed.
func (g *Gate) CanAct(session Session, phase string, action Action) error {
	if session.Role == RoleWebLeader {
		return nil
	}

	capability, ok := g.capabilities[session.Role]
	if !ok {
		metrics.IncrementPermissionDenial("invalid_role")
		return &InvalidRoleError{Role: session.Role}
	}

	if !capability.CoversPhase(phase) {
		metrics.IncrementPermissionDenial("phase_not_authorized")
		return &PhaseNotAuthorizedError{Role: session.Role, Phase: phase}
	}

	if action != ActionCompleteItem && !capability.Leader {
		metrics.IncrementPermissionDenial("requires_leader")
		return &RequiresLeaderError{Role: session.Role, Action: action}
	}

	return nil
}

// CanRenamePhase checks the phase-rename operation.
func (g *Gate) CanRenamePhase(session Session, phase string) error {
	return g.CanAct(session, phase, ActionRenamePhase)
}

// CanHidePhase checks the phase-hide operation.
func (g *Gate) CanHidePhase(session Session, phase string) error {
	return g.CanAct(session, phase, ActionHidePhase)
}

// CanReorderPhases checks the phase-reorder operation. Reordering phases is
// restricted to the web leader regardless of per-phase capability.
func (g *Gate) CanReorderPhases(session Session) error {
	if session.Role == RoleWebLeader {
		return nil
	}

	if _, ok := g.capabilities[session.Role]; !ok {
		metrics.IncrementPermissionDenial("invalid_role")
		return &InvalidRoleError{Role: session.Role}
	}

	metrics.IncrementPermissionDenial("requires_leader")
	return &RequiresLeaderError{Role: session.Role, Action: ActionReorderPhases}
}

// Allowed is a boolean convenience over CanAct.
func (g *Gate) Allowed(session Session, phase string, action Action) bool {
	return g.CanAct(session, phase, action) == nil
}

// InvalidRoleError is returned when the acting role has no capability record.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("unknown role: %s", e.Role)
}

// UserMessage returns the user-facing denial text.
func (e *InvalidRoleError) UserMessage() string {
	return "Rol no reconocido. Selecciona un rol válido."
}

// PhaseNotAuthorizedError is returned when the role may not act on the phase.
type PhaseNotAuthorizedError struct {
	Role  string
	Phase string
}

func (e *PhaseNotAuthorizedError) Error() string {
	return fmt.Sprintf("role %s is not authorized for phase %s", e.Role, e.Phase)
}

// UserMessage returns the user-facing denial text.
func (e *PhaseNotAuthorizedError) UserMessage() string {
	return "Tu rol no tiene asignada esta fase del proyecto."
}

// RequiresLeaderError is returned when a non-leader role attempts a structural
// edit. Non-leader roles may only mark items completed.
type RequiresLeaderError struct {
	Role   string
	Action Action
}

func (e *RequiresLeaderError) Error() string {
	return fmt.Sprintf("action %s requires a leader role, got %s", e.Action, e.Role)
}

// UserMessage returns the user-facing denial text.
func (e *RequiresLeaderError) UserMessage() string {
	return "Solo un rol líder puede modificar la estructura del checklist."
}
