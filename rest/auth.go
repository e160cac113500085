package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jobhunter "github.com/jobhunter/client-go"
)

// compile-time check
var _ jobhunter.AuthAPI = (*Client)(nil)

// Login exchanges username/password for a credential and identity.
func (c *Client) Login(ctx context.Context, username, password string) (*jobhunter.AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	return c.authCall(ctx, "/auth/login", body, WithoutAutoRefresh())
}

// LoginGoogle exchanges a Google ID token for a credential and identity.
func (c *Client) LoginGoogle(ctx context.Context, idToken string) (*jobhunter.AuthResult, error) {
	body := map[string]string{"idToken": idToken}
	return c.authCall(ctx, "/auth/google", body, WithoutAutoRefresh())
}

// SelectRole assigns a role to the authenticated, still-unassigned identity.
// The backend answers like a login: fresh credential plus updated identity.
func (c *Client) SelectRole(ctx context.Context, role string) (*jobhunter.AuthResult, error) {
	body := map[string]string{"role": role}
	return c.authCall(ctx, "/auth/social-onboarding", body)
}

// authCall performs a credential-issuing POST and validates its payload.
func (c *Client) authCall(ctx context.Context, path string, body any, opts ...CallOption) (*jobhunter.AuthResult, error) {
	var res jobhunter.AuthResult
	if err := c.Do(ctx, http.MethodPost, path, body, &res, opts...); err != nil {
		var apiErr *jobhunter.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("rest: %s: %w: %s", path, jobhunter.ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("rest: %s: %w: missing access_token", path, jobhunter.ErrServer)
	}
	return &res, nil
}

// Account returns the identity behind the current credential.
func (c *Client) Account(ctx context.Context) (*jobhunter.Identity, error) {
	var payload struct {
		User *jobhunter.Identity `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/auth/account", nil, &payload); err != nil {
		return nil, err
	}
	if payload.User == nil {
		return nil, fmt.Errorf("rest: /auth/account: %w: missing user", jobhunter.ErrServer)
	}
	return payload.User, nil
}

// Logout invalidates the server-side session. The caller treats failures
// as best effort; local cleanup does not depend on this call.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Register creates a new account. It does not log the account in.
func (c *Client) Register(ctx context.Context, req jobhunter.RegisterRequest) error {
	return c.Do(ctx, http.MethodPost, "/auth/register", req, nil, WithoutAutoRefresh())
}

// ChangePassword updates the current account's password.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{"currentPassword": current, "newPassword": updated}
	return c.Do(ctx, http.MethodPost, "/auth/change-password", body, nil)
}
