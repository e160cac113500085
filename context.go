package jobhunter

import "context"

type ctxKey string

const (
	ctxKeyIdentity ctxKey = "jobhunter_identity"
	ctxKeyState    ctxKey = "jobhunter_state"
)

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) *Identity {
	v, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return v
}

// WithState stores the session state in the context.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKeyState, s)
}

// StateFromContext extracts the session state from the context. The zero
// State (PhaseInitializing, no identity) is returned when absent.
func StateFromContext(ctx context.Context) State {
	v, _ := ctx.Value(ctxKeyState).(State)
	return v
}
