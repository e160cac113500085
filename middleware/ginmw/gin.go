// Package ginmw adapts the guard decisions to Gin middleware for
// server-rendered frontends built on this SDK.
//
// All middleware functions accept a *jobhunter.Client and read session
// state through its SessionSource, with no direct dependency on any
// concrete session implementation.
package ginmw

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	jobhunter "github.com/jobhunter/client-go"
	"github.com/jobhunter/client-go/guard"
)

// Protect returns middleware enforcing the route guard: unauthenticated
// users are redirected to login with the requested location preserved in
// the "from" query parameter; authenticated users whose role is not in
// roles are sent home. Empty roles means any authenticated identity.
func Protect(client *jobhunter.Client, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		src := client.Session()
		if src == nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		state := src.State()
		res := guard.Route(state, roles, c.Request.URL.Path)
		switch res.Decision {
		case guard.Loading:
			// Hydration still in flight; ask the client to retry
			// rather than guessing a redirect.
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		case guard.RedirectToLogin:
			c.Redirect(http.StatusFound, loginURL(res.From))
			c.Abort()
		case guard.RedirectToHome:
			c.Redirect(http.StatusFound, guard.HomePath)
			c.Abort()
		default:
			attachState(c, state)
			c.Next()
		}
	}
}

// RoleOnboarding returns middleware applying the onboarding guard to every
// authenticated view: identities without a real role are redirected to the
// role-selection view, unless they are already on it.
func RoleOnboarding(client *jobhunter.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		src := client.Session()
		if src == nil {
			c.Next()
			return
		}

		res := guard.RoleOnboarding(src.State(), c.Request.URL.Path)
		if res.Decision == guard.RedirectToRoleSelection {
			c.Redirect(http.StatusFound, guard.RoleSelectionPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated identity stashed by Protect, or nil.
func Identity(c *gin.Context) *jobhunter.Identity {
	return jobhunter.IdentityFromContext(c.Request.Context())
}

// State returns the session state stashed by Protect.
func State(c *gin.Context) jobhunter.State {
	return jobhunter.StateFromContext(c.Request.Context())
}

func attachState(c *gin.Context, state jobhunter.State) {
	ctx := jobhunter.WithState(c.Request.Context(), state)
	if state.Identity != nil {
		ctx = jobhunter.WithIdentity(ctx, state.Identity)
	}
	c.Request = c.Request.WithContext(ctx)
}

func loginURL(from string) string {
	if from == "" || from == guard.LoginPath {
		return guard.LoginPath
	}
	return guard.LoginPath + "?from=" + url.QueryEscape(from)
}
