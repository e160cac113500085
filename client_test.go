package jobhunter

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

type stubStore struct{ cred Credential }

func (s *stubStore) Get() (Credential, bool) { return s.cred, !s.cred.IsZero() }
func (s *stubStore) Set(c Credential)        { s.cred = c }
func (s *stubStore) Clear()                  { s.cred = Credential{} }

type stubSession struct{ state State }

func (s *stubSession) State() State                 { return s.state }
func (s *stubSession) Subscribe(func(State)) func() { return func() {} }

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}

func TestNewClient_Options(t *testing.T) {
	store := &stubStore{}
	sess := &stubSession{state: State{Phase: PhaseUnauthenticated}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	c, err := NewClient(Config{BaseURL: "http://localhost:8080/api/v1"},
		WithCredentialStore(store),
		WithSession(sess),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if c.Store() != store {
		t.Error("Store() should return the injected store")
	}
	if c.Session() != sess {
		t.Error("Session() should return the injected session source")
	}
	if c.Logger() != logger {
		t.Error("Logger() should return the injected logger")
	}
	if c.Auth() != nil {
		t.Error("Auth() should be nil when not configured")
	}
	if c.Config().BaseURL != "http://localhost:8080/api/v1" {
		t.Errorf("unexpected BaseURL: %s", c.Config().BaseURL)
	}
}

func TestNewClient_DefaultLogger(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://localhost"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.Logger() == nil {
		t.Error("expected a default logger")
	}
}

func TestClient_CloseWithoutClosers(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://localhost"},
		WithCredentialStore(&stubStore{}),
	)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}
	if got := StateFromContext(ctx); got.Phase != PhaseInitializing {
		t.Errorf("expected zero state from empty context, got phase %v", got.Phase)
	}

	id := &Identity{ID: 7, Name: "Alice", Role: &Role{Name: RoleCandidate}}
	state := State{Phase: PhaseAssigned, Identity: id}
	ctx = WithIdentity(WithState(ctx, state), id)

	if IdentityFromContext(ctx) != id {
		t.Error("identity round-trip failed")
	}
	if got := StateFromContext(ctx); got.Phase != PhaseAssigned || got.Identity != id {
		t.Error("state round-trip failed")
	}
}
