package jobhunter

// Role names known to the JobHunter backend.
const (
	RoleCandidate  = "CANDIDATE"
	RoleHR         = "HR"
	RoleManager    = "MANAGER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"

	// RoleUnassigned is the placeholder the backend assigns to a freshly
	// federated account before onboarding picks a real role.
	RoleUnassigned = "USER"
)

// Credential is the client-held access credential. The paired refresh token
// never reaches application code: the server transports it in a same-site,
// HTTP-only cookie and the transport's cookie jar carries it back.
type Credential struct {
	AccessToken string `json:"access_token"`
}

// IsZero reports whether no credential is held.
func (c Credential) IsZero() bool { return c.AccessToken == "" }

// Role is the single capability tier assigned to an identity.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assigned reports whether the role is a real capability tier rather than
// the unassigned placeholder.
func (r *Role) Assigned() bool {
	return r != nil && r.Name != "" && r.Name != RoleUnassigned
}

// CompanyRef is an opaque reference to the company an identity belongs to.
// The client only uses it to decide whether to offer company registration.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Identity is the authenticated user's profile as known to the client.
type Identity struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    *Role       `json:"role"`
	Company *CompanyRef `json:"company"`
}

// AuthResult is the payload returned by credential-issuing endpoints
// (login, federated login, role selection).
type AuthResult struct {
	AccessToken string    `json:"access_token"`
	User        *Identity `json:"user"`
}

// RegisterRequest holds the fields for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Phase is one of the discrete states of the session state machine.
type Phase int

const (
	// PhaseInitializing means hydration has not resolved yet. No navigation
	// decision may be derived from this phase.
	PhaseInitializing Phase = iota

	// PhaseUnauthenticated means no session exists.
	PhaseUnauthenticated

	// PhaseUnassigned means the identity is authenticated but has no real
	// role yet and must complete onboarding.
	PhaseUnassigned

	// PhaseAssigned means the identity is authenticated with a valid role.
	PhaseAssigned
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseUnassigned:
		return "authenticated_unassigned"
	case PhaseAssigned:
		return "authenticated_assigned"
	default:
		return "unknown"
	}
}

// State is a read-only projection of the session, recomputed from the phase
// and identity; it is never stored independently.
type State struct {
	Phase    Phase
	Identity *Identity
}

// Authenticated reports whether a session exists, assigned or not.
func (s State) Authenticated() bool {
	return s.Phase == PhaseUnassigned || s.Phase == PhaseAssigned
}

// NeedsRoleSelection is the single authoritative predicate for the role
// onboarding redirect. Both the route guard and the onboarding guard
// consult it; there is no second copy of this logic.
func (s State) NeedsRoleSelection() bool {
	return s.Phase == PhaseUnassigned
}

// HasRole reports whether the identity's role is a member of names.
// An empty names list means any authenticated identity qualifies.
func (s State) HasRole(names ...string) bool {
	if !s.Authenticated() {
		return false
	}
	if len(names) == 0 {
		return true
	}
	if s.Identity == nil || s.Identity.Role == nil {
		return false
	}
	for _, n := range names {
		if s.Identity.Role.Name == n {
			return true
		}
	}
	return false
}
