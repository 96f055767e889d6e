package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebLeaderAllowedEverywhere(t *testing.T) {
	gate := NewGate()
	session := Session{Email: "lider@example.com", Role: RoleWebLeader}

	actions := []Action{
		ActionCompleteItem, ActionEditItem, ActionAddItem,
		ActionDeleteItem, ActionReorderItems, ActionRenamePhase, ActionHidePhase,
	}

	// Including a phase no role's capability set mentions.
	phases := []string{"qa", "development", "design", "unmapped-phase"}

	for _, phase := range phases {
		for _, action := range actions {
			assert.NoError(t, gate.CanAct(session, phase, action),
				"web_leader should be allowed action %s on phase %s", action, phase)
		}
	}

	assert.NoError(t, gate.CanReorderPhases(session))
}

func TestUnknownRoleDenied(t *testing.T) {
	gate := NewGate()
	session := Session{Role: "intern"}

	err := gate.CanAct(session, "qa", ActionCompleteItem)
	require.Error(t, err)

	var invalidRole *InvalidRoleError
	require.ErrorAs(t, err, &invalidRole)
	assert.Equal(t, "intern", invalidRole.Role)
	assert.NotEmpty(t, invalidRole.UserMessage())
}

func TestPhaseNotAuthorized(t *testing.T) {
	gate := NewGate()
	session := Session{Role: RoleQA}

	// qa covers qa and security, not design
	err := gate.CanAct(session, "design", ActionCompleteItem)
	require.Error(t, err)

	var phaseErr *PhaseNotAuthorizedError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, "design", phaseErr.Phase)
}

func TestNonLeaderMayOnlyComplete(t *testing.T) {
	gate := NewGate()
	session := Session{Role: RoleQA}

	// Completing an item in an authorized phase passes.
	assert.NoError(t, gate.CanAct(session, "qa", ActionCompleteItem))

	// Every structural action on the same phase is denied for non-leaders.
	structural := []Action{
		ActionEditItem, ActionAddItem, ActionDeleteItem,
		ActionReorderItems, ActionRenamePhase, ActionHidePhase,
	}
	for _, action := range structural {
		err := gate.CanAct(session, "qa", action)
		require.Error(t, err, "action %s should require leader", action)

		var leaderErr *RequiresLeaderError
		require.ErrorAs(t, err, &leaderErr)
		assert.Equal(t, action, leaderErr.Action)
	}
}

func TestLeaderRoleMayEditWithinItsPhases(t *testing.T) {
	gate := NewGate()
	session := Session{Role: RoleProductOwner}

	assert.NoError(t, gate.CanAct(session, "design", ActionEditItem))
	assert.NoError(t, gate.CanAct(session, "documentation", ActionDeleteItem))

	// Leader flag does not extend beyond the role's phase set.
	var phaseErr *PhaseNotAuthorizedError
	err := gate.CanAct(session, "development", ActionEditItem)
	require.ErrorAs(t, err, &phaseErr)
}

func TestReorderPhasesRestrictedToWebLeader(t *testing.T) {
	gate := NewGate()

	// administrador is a leader over all phases but still may not reorder phases.
	err := gate.CanReorderPhases(Session{Role: RoleAdministrador})
	var leaderErr *RequiresLeaderError
	require.ErrorAs(t, err, &leaderErr)
	assert.Equal(t, ActionReorderPhases, leaderErr.Action)

	var invalidRole *InvalidRoleError
	err = gate.CanReorderPhases(Session{Role: "ghost"})
	require.ErrorAs(t, err, &invalidRole)

	assert.NoError(t, gate.CanReorderPhases(Session{Role: RoleWebLeader}))
}

func TestLoadedCapabilityTable(t *testing.T) {
	gate := NewGateWithCapabilities(map[string]Capability{
		"auditor": {DisplayName: "Auditor", Leader: false, Phases: []string{"security"}},
	})

	assert.NoError(t, gate.CanAct(Session{Role: "auditor"}, "security", ActionCompleteItem))

	// Roles from the default table are absent once a custom table is loaded.
	var invalidRole *InvalidRoleError
	err := gate.CanAct(Session{Role: RoleQA}, "qa", ActionCompleteItem)
	require.ErrorAs(t, err, &invalidRole)

	// web_leader bypass holds even when the table does not mention it.
	assert.NoError(t, gate.CanAct(Session{Role: RoleWebLeader}, "security", ActionEditItem))
}

func TestDistinctUserMessages(t *testing.T) {
	msgs := map[string]bool{
		(&InvalidRoleError{Role: "x"}).UserMessage():                        true,
		(&PhaseNotAuthorizedError{Role: "x", Phase: "qa"}).UserMessage():    true,
		(&RequiresLeaderError{Role: "x", Action: ActionEditItem}).UserMessage(): true,
	}
	assert.Len(t, msgs, 3, "denial outcomes must map to distinct user-facing messages")
}
