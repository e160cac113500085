package jobhunter

import "testing"

func TestRole_Assigned(t *testing.T) {
	tests := []struct {
		name string
		role *Role
		want bool
	}{
		{"nil role", nil, false},
		{"empty name", &Role{}, false},
		{"placeholder USER", &Role{Name: RoleUnassigned}, false},
		{"candidate", &Role{Name: RoleCandidate}, true},
		{"hr", &Role{Name: RoleHR}, true},
		{"admin", &Role{Name: RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Assigned(); got != tt.want {
				t.Errorf("Assigned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_NeedsRoleSelection(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"initializing", State{Phase: PhaseInitializing}, false},
		{"unauthenticated", State{Phase: PhaseUnauthenticated}, false},
		{"unassigned", State{Phase: PhaseUnassigned, Identity: &Identity{}}, true},
		{"assigned", State{Phase: PhaseAssigned, Identity: &Identity{Role: &Role{Name: RoleHR}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.NeedsRoleSelection(); got != tt.want {
				t.Errorf("NeedsRoleSelection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_HasRole(t *testing.T) {
	assigned := State{
		Phase:    PhaseAssigned,
		Identity: &Identity{Role: &Role{Name: RoleCandidate}},
	}

	if !assigned.HasRole() {
		t.Error("empty role set should admit any authenticated identity")
	}
	if !assigned.HasRole(RoleHR, RoleCandidate) {
		t.Error("expected membership for CANDIDATE")
	}
	if assigned.HasRole(RoleAdmin) {
		t.Error("expected no membership for ADMIN")
	}

	unauth := State{Phase: PhaseUnauthenticated}
	if unauth.HasRole() {
		t.Error("unauthenticated state should never have a role")
	}

	noRole := State{Phase: PhaseUnassigned, Identity: &Identity{}}
	if noRole.HasRole(RoleCandidate) {
		t.Error("unassigned identity should not match a role set")
	}
}

func TestPhase_String(t *testing.T) {
	if PhaseInitializing.String() != "initializing" {
		t.Errorf("unexpected: %s", PhaseInitializing)
	}
	if Phase(99).String() != "unknown" {
		t.Errorf("unexpected: %s", Phase(99))
	}
}
