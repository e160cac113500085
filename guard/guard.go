// Package guard computes navigation decisions from session state. Guards
// are pure functions: they never mutate state and never fail, they only
// decide where the user goes next.
package guard

import (
	jobhunter "github.com/jobhunter/client-go"
)

// Well-known view locations.
const (
	LoginPath         = "/login"
	HomePath          = "/"
	RoleSelectionPath = "/select-role"
)

// Decision is the outcome of evaluating a guard.
type Decision int

const (
	// Loading means hydration has not resolved; render a neutral
	// indicator and make no redirect decision yet.
	Loading Decision = iota

	// Render means the requested view may be shown.
	Render

	// RedirectToLogin sends the user to the login view, preserving the
	// requested location for post-login return.
	RedirectToLogin

	// RedirectToHome sends the user home after a role mismatch.
	RedirectToHome

	// RedirectToRoleSelection sends a role-less identity into onboarding.
	RedirectToRoleSelection
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	case RedirectToRoleSelection:
		return "redirect_to_role_selection"
	default:
		return "unknown"
	}
}

// Result pairs a decision with the location it preserves.
type Result struct {
	Decision Decision

	// From is the originally requested location, carried across the
	// login redirect so the user returns where they were headed.
	From string
}

// Route decides whether the session permits rendering the view at
// location. requiredRoles empty means any authenticated identity.
//
// No redirect is ever issued while the phase is still initializing; the
// caller renders a neutral indicator until hydration resolves.
func Route(state jobhunter.State, requiredRoles []string, location string) Result {
	if state.Phase == jobhunter.PhaseInitializing {
		return Result{Decision: Loading}
	}
	if !state.Authenticated() {
		return Result{Decision: RedirectToLogin, From: location}
	}
	if len(requiredRoles) > 0 && !state.HasRole(requiredRoles...) {
		return Result{Decision: RedirectToHome}
	}
	return Result{Decision: Render}
}

// RoleOnboarding is the narrower guard applied to every authenticated
// view: an identity without a real role is pushed into role selection.
// It stands down on the selection view itself and while the session is
// initializing or absent.
func RoleOnboarding(state jobhunter.State, location string) Result {
	if !state.NeedsRoleSelection() {
		return Result{Decision: Render}
	}
	if location == RoleSelectionPath {
		return Result{Decision: Render}
	}
	return Result{Decision: RedirectToRoleSelection, From: location}
}
