package jobhunter

import "context"

// CredentialStore is the durable slot holding the current access credential.
// Implementations: credstore/ (in-memory, file-backed).
//
// Operations never fail: a store whose medium is unavailable degrades to a
// process-local slot rather than returning errors.
type CredentialStore interface {
	// Get returns the stored credential, if any.
	Get() (Credential, bool)

	// Set overwrites the stored credential.
	Set(Credential)

	// Clear removes the stored credential.
	Clear()
}

// AuthAPI is the slice of the JobHunter backend consumed by the session
// manager. Implementations: rest/ (HTTP), fake/ (testing).
type AuthAPI interface {
	// Login exchanges username/password for a credential and identity.
	Login(ctx context.Context, username, password string) (*AuthResult, error)

	// LoginGoogle exchanges a third-party identity assertion for a
	// credential and identity.
	LoginGoogle(ctx context.Context, idToken string) (*AuthResult, error)

	// SelectRole assigns a role to an unassigned identity. The backend
	// answers with a fresh credential, like a login.
	SelectRole(ctx context.Context, role string) (*AuthResult, error)

	// Account returns the identity behind the current credential.
	Account(ctx context.Context) (*Identity, error)

	// Logout invalidates the server-side session.
	Logout(ctx context.Context) error

	// Register creates a new account. It does not log the account in.
	Register(ctx context.Context, req RegisterRequest) error

	// ChangePassword updates the current account's password.
	ChangePassword(ctx context.Context, current, updated string) error
}

// SessionSource exposes the session state machine to readers such as the
// navigation guards. Implementation: session/.
type SessionSource interface {
	// State returns the current session projection.
	State() State

	// Subscribe registers fn to run on every state change and returns a
	// cancel function. fn is called outside the manager's lock.
	Subscribe(fn func(State)) (cancel func())
}
