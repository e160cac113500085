// Package session holds the authenticated-identity state machine consumed
// by the rest of the application: who is logged in, as what role, and
// whether that is still true.
package session

import (
	"context"
	"log/slog"
	"sync"

	jobhunter "github.com/jobhunter/client-go"
	"github.com/jobhunter/client-go/metrics"
)

// Manager owns the session state machine. It is the sole mutator of the
// identity; guards and middleware are pure readers through State.
//
// The machine starts in PhaseInitializing and leaves it on the first
// Hydrate, login or logout.
type Manager struct {
	store   jobhunter.CredentialStore
	api     jobhunter.AuthAPI
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	phase    jobhunter.Phase
	identity *jobhunter.Identity

	subMu   sync.Mutex
	subs    map[int]func(jobhunter.State)
	nextSub int
}

// compile-time check
var _ jobhunter.SessionSource = (*Manager)(nil)

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// New creates a Manager in PhaseInitializing.
func New(store jobhunter.CredentialStore, api jobhunter.AuthAPI, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		api:   api,
		phase: jobhunter.PhaseInitializing,
		subs:  make(map[int]func(jobhunter.State)),
	}
	for _, o := range opts {
		o(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.metrics == nil {
		m.metrics = metrics.New(false)
	}
	return m
}

// State returns the current session projection.
func (m *Manager) State() jobhunter.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return jobhunter.State{Phase: m.phase, Identity: m.identity}
}

// Subscribe registers fn to run on every state change and returns a cancel
// function. fn is called outside the manager's lock.
func (m *Manager) Subscribe(fn func(jobhunter.State)) (cancel func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Hydrate resolves the initial session state at process start. With no
// stored credential it moves straight to PhaseUnauthenticated without a
// network call. With one, it fetches the account; any failure (including
// a refresh the transport could not repair) clears the store and ends in
// PhaseUnauthenticated. Idempotent and safe to call again.
func (m *Manager) Hydrate(ctx context.Context) {
	if cred, ok := m.store.Get(); !ok || cred.IsZero() {
		m.transition(jobhunter.PhaseUnauthenticated, nil)
		return
	}

	identity, err := m.api.Account(ctx)
	if err != nil {
		m.logger.Info("session hydration failed, starting unauthenticated", "error", err)
		m.store.Clear()
		m.transition(jobhunter.PhaseUnauthenticated, nil)
		return
	}
	m.transition(phaseFor(identity), identity)
}

// Login authenticates with username/password. On failure the state is
// unchanged and the error propagates for display.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	res, err := m.api.Login(ctx, username, password)
	m.metrics.RecordLogin("password", err == nil)
	if err != nil {
		return err
	}
	m.applyAuth(res)
	return nil
}

// LoginGoogle authenticates with a Google ID token. Same contract as Login.
func (m *Manager) LoginGoogle(ctx context.Context, idToken string) error {
	res, err := m.api.LoginGoogle(ctx, idToken)
	m.metrics.RecordLogin("google", err == nil)
	if err != nil {
		return err
	}
	m.applyAuth(res)
	return nil
}

// SelectRole completes onboarding for an unassigned identity. Valid only
// in PhaseUnassigned; the backend responds like a login, so a success
// always lands in PhaseAssigned.
func (m *Manager) SelectRole(ctx context.Context, role string) error {
	res, err := m.api.SelectRole(ctx, role)
	m.metrics.RecordLogin("onboarding", err == nil)
	if err != nil {
		return err
	}
	m.applyAuth(res)
	return nil
}

// Logout ends the session. The network call is best effort: local cleanup
// is unconditional and Logout never returns an error.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout call failed, clearing local session anyway", "error", err)
	}
	m.metrics.RecordLogout()
	m.store.Clear()
	m.transition(jobhunter.PhaseUnauthenticated, nil)
}

// Invalidate moves the session to PhaseUnauthenticated without a network
// call. The transport invokes it after an unrecoverable refresh failure,
// when the store is already empty.
func (m *Manager) Invalidate() {
	m.store.Clear()
	m.transition(jobhunter.PhaseUnauthenticated, nil)
}

// Register creates a new account. Session state is untouched; the new
// account logs in separately.
func (m *Manager) Register(ctx context.Context, req jobhunter.RegisterRequest) error {
	return m.api.Register(ctx, req)
}

// ChangePassword updates the current account's password. Session state and
// credential are untouched.
func (m *Manager) ChangePassword(ctx context.Context, current, updated string) error {
	return m.api.ChangePassword(ctx, current, updated)
}

// applyAuth installs the result of a credential-issuing call: credential
// into the store, identity into the machine.
func (m *Manager) applyAuth(res *jobhunter.AuthResult) {
	m.store.Set(jobhunter.Credential{AccessToken: res.AccessToken})
	m.transition(phaseFor(res.User), res.User)
}

func (m *Manager) transition(phase jobhunter.Phase, identity *jobhunter.Identity) {
	m.mu.Lock()
	changed := m.phase != phase || m.identity != identity
	m.phase = phase
	m.identity = identity
	state := jobhunter.State{Phase: phase, Identity: identity}
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Debug("session state changed", "phase", phase.String())
	m.notify(state)
}

func (m *Manager) notify(state jobhunter.State) {
	m.subMu.Lock()
	fns := make([]func(jobhunter.State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// phaseFor derives the authenticated phase from role validity. A missing
// identity can only mean no session.
func phaseFor(identity *jobhunter.Identity) jobhunter.Phase {
	if identity == nil {
		return jobhunter.PhaseUnauthenticated
	}
	if identity.Role.Assigned() {
		return jobhunter.PhaseAssigned
	}
	return jobhunter.PhaseUnassigned
}
