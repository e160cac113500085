package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	jobhunter "github.com/jobhunter/client-go"
)

// memStore is a minimal in-memory credential slot for manager tests.
type memStore struct {
	mu   sync.Mutex
	cred jobhunter.Credential
	set  bool
}

func (s *memStore) Get() (jobhunter.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, s.set
}

func (s *memStore) Set(c jobhunter.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.set = c, true
}

func (s *memStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.set = jobhunter.Credential{}, false
}

// mockAPI implements jobhunter.AuthAPI for testing
type mockAPI struct {
	authResult *jobhunter.AuthResult
	identity   *jobhunter.Identity

	shouldFailLogin   bool
	shouldFailAccount bool
	shouldFailLogout  bool

	accountCalls int
	logoutCalls  int
}

func (m *mockAPI) Login(ctx context.Context, username, password string) (*jobhunter.AuthResult, error) {
	if m.shouldFailLogin {
		return nil, jobhunter.ErrInvalidCredentials
	}
	return m.authResult, nil
}

func (m *mockAPI) LoginGoogle(ctx context.Context, idToken string) (*jobhunter.AuthResult, error) {
	if m.shouldFailLogin {
		return nil, jobhunter.ErrInvalidCredentials
	}
	return m.authResult, nil
}

func (m *mockAPI) SelectRole(ctx context.Context, role string) (*jobhunter.AuthResult, error) {
	if m.shouldFailLogin {
		return nil, errors.New("role assignment failed")
	}
	res := *m.authResult
	res.User = &jobhunter.Identity{ID: res.User.ID, Name: res.User.Name, Role: &jobhunter.Role{Name: role}}
	return &res, nil
}

func (m *mockAPI) Account(ctx context.Context) (*jobhunter.Identity, error) {
	m.accountCalls++
	if m.shouldFailAccount {
		return nil, jobhunter.ErrAuthExpired
	}
	return m.identity, nil
}

func (m *mockAPI) Logout(ctx context.Context) error {
	m.logoutCalls++
	if m.shouldFailLogout {
		return jobhunter.ErrNetwork
	}
	return nil
}

func (m *mockAPI) Register(ctx context.Context, req jobhunter.RegisterRequest) error {
	return nil
}

func (m *mockAPI) ChangePassword(ctx context.Context, current, updated string) error {
	return nil
}

func candidateResult(token string) *jobhunter.AuthResult {
	return &jobhunter.AuthResult{
		AccessToken: token,
		User: &jobhunter.Identity{
			ID:   1,
			Name: "Alice",
			Role: &jobhunter.Role{ID: 2, Name: jobhunter.RoleCandidate},
		},
	}
}

func unassignedResult(token string) *jobhunter.AuthResult {
	return &jobhunter.AuthResult{
		AccessToken: token,
		User:        &jobhunter.Identity{ID: 1, Name: "Alice"},
	}
}

func TestNew_StartsInitializing(t *testing.T) {
	m := New(&memStore{}, &mockAPI{})
	if got := m.State().Phase; got != jobhunter.PhaseInitializing {
		t.Errorf("initial phase = %v, want initializing", got)
	}
}

func TestHydrate_NoCredentialSkipsNetwork(t *testing.T) {
	api := &mockAPI{}
	m := New(&memStore{}, api)

	m.Hydrate(context.Background())

	if got := m.State().Phase; got != jobhunter.PhaseUnauthenticated {
		t.Errorf("phase = %v, want unauthenticated", got)
	}
	if api.accountCalls != 0 {
		t.Error("hydrate without a credential must not call the network")
	}
}

func TestHydrate_Success(t *testing.T) {
	tests := []struct {
		name     string
		identity *jobhunter.Identity
		want     jobhunter.Phase
	}{
		{
			name:     "assigned role",
			identity: &jobhunter.Identity{ID: 1, Role: &jobhunter.Role{Name: jobhunter.RoleHR}},
			want:     jobhunter.PhaseAssigned,
		},
		{
			name:     "nil role",
			identity: &jobhunter.Identity{ID: 1},
			want:     jobhunter.PhaseUnassigned,
		},
		{
			name:     "placeholder USER role",
			identity: &jobhunter.Identity{ID: 1, Role: &jobhunter.Role{Name: jobhunter.RoleUnassigned}},
			want:     jobhunter.PhaseUnassigned,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			store.Set(jobhunter.Credential{AccessToken: "T1"})
			m := New(store, &mockAPI{identity: tt.identity})

			m.Hydrate(context.Background())

			if got := m.State().Phase; got != tt.want {
				t.Errorf("phase = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHydrate_FailureClearsCredential(t *testing.T) {
	store := &memStore{}
	store.Set(jobhunter.Credential{AccessToken: "stale"})
	m := New(store, &mockAPI{shouldFailAccount: true})

	m.Hydrate(context.Background())

	if got := m.State().Phase; got != jobhunter.PhaseUnauthenticated {
		t.Errorf("phase = %v, want unauthenticated", got)
	}
	if _, ok := store.Get(); ok {
		t.Error("store must be cleared when hydration fails")
	}
}

func TestLogin_Success(t *testing.T) {
	store := &memStore{}
	m := New(store, &mockAPI{authResult: candidateResult("T1")})

	if err := m.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	state := m.State()
	if state.Phase != jobhunter.PhaseAssigned {
		t.Errorf("phase = %v, want assigned", state.Phase)
	}
	if state.Identity == nil || state.Identity.Name != "Alice" {
		t.Errorf("unexpected identity: %+v", state.Identity)
	}
	if cred, ok := store.Get(); !ok || cred.AccessToken != "T1" {
		t.Error("login must write the credential to the store")
	}
}

func TestLogin_FailureLeavesStateUnchanged(t *testing.T) {
	store := &memStore{}
	m := New(store, &mockAPI{shouldFailLogin: true})
	m.Hydrate(context.Background())

	err := m.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, jobhunter.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := m.State().Phase; got != jobhunter.PhaseUnauthenticated {
		t.Errorf("phase = %v, want unauthenticated (unchanged)", got)
	}
	if _, ok := store.Get(); ok {
		t.Error("failed login must not store a credential")
	}
}

func TestLoginGoogle_UnassignedIdentity(t *testing.T) {
	m := New(&memStore{}, &mockAPI{authResult: unassignedResult("T1")})

	if err := m.LoginGoogle(context.Background(), "id-token"); err != nil {
		t.Fatalf("LoginGoogle returned error: %v", err)
	}

	state := m.State()
	if state.Phase != jobhunter.PhaseUnassigned {
		t.Errorf("phase = %v, want unassigned", state.Phase)
	}
	if !state.NeedsRoleSelection() {
		t.Error("fresh federated identity must need role selection")
	}
}

func TestSelectRole_TransitionsToAssigned(t *testing.T) {
	store := &memStore{}
	api := &mockAPI{authResult: unassignedResult("T1")}
	m := New(store, api)

	if err := m.LoginGoogle(context.Background(), "id-token"); err != nil {
		t.Fatal(err)
	}

	api.authResult = unassignedResult("T2")
	if err := m.SelectRole(context.Background(), jobhunter.RoleCandidate); err != nil {
		t.Fatalf("SelectRole returned error: %v", err)
	}

	state := m.State()
	if state.Phase != jobhunter.PhaseAssigned {
		t.Errorf("phase = %v, want assigned", state.Phase)
	}
	if state.NeedsRoleSelection() {
		t.Error("role selection must not be needed after assignment")
	}
	if cred, _ := store.Get(); cred.AccessToken != "T2" {
		t.Error("role selection must install the fresh credential")
	}
}

func TestLogout_AlwaysCleansUp(t *testing.T) {
	tests := []struct {
		name       string
		failLogout bool
	}{
		{name: "network ok"},
		{name: "network failure", failLogout: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			api := &mockAPI{authResult: candidateResult("T1"), shouldFailLogout: tt.failLogout}
			m := New(store, api)
			if err := m.Login(context.Background(), "a@b.com", "secret1"); err != nil {
				t.Fatal(err)
			}

			m.Logout(context.Background())

			if got := m.State().Phase; got != jobhunter.PhaseUnauthenticated {
				t.Errorf("phase = %v, want unauthenticated", got)
			}
			if m.State().Identity != nil {
				t.Error("identity must be cleared")
			}
			if _, ok := store.Get(); ok {
				t.Error("store must be empty after logout")
			}
			if api.logoutCalls != 1 {
				t.Errorf("logout calls = %d, want 1", api.logoutCalls)
			}
		})
	}
}

func TestInvalidate(t *testing.T) {
	store := &memStore{}
	m := New(store, &mockAPI{authResult: candidateResult("T1")})
	if err := m.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	m.Invalidate()

	if got := m.State().Phase; got != jobhunter.PhaseUnauthenticated {
		t.Errorf("phase = %v, want unauthenticated", got)
	}
	if _, ok := store.Get(); ok {
		t.Error("store must be empty after invalidation")
	}
}

func TestSubscribe_NotifiesOnTransitions(t *testing.T) {
	m := New(&memStore{}, &mockAPI{authResult: candidateResult("T1")})

	var phases []jobhunter.Phase
	cancel := m.Subscribe(func(s jobhunter.State) {
		phases = append(phases, s.Phase)
	})

	m.Hydrate(context.Background())
	if err := m.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	if len(phases) != 2 ||
		phases[0] != jobhunter.PhaseUnauthenticated ||
		phases[1] != jobhunter.PhaseAssigned {
		t.Errorf("unexpected notifications: %v", phases)
	}

	cancel()
	m.Logout(context.Background())
	if len(phases) != 2 {
		t.Error("cancelled subscriber must not be notified")
	}
}
