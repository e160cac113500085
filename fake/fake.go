// Package fake provides an in-process JobHunter auth backend for tests,
// plus a fully wired client against it.
//
// Use fake.NewClient() in unit tests to exercise the whole credential
// lifecycle (login, bearer attach, expiry, refresh, replay) without a
// real backend.
package fake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	jobhunter "github.com/jobhunter/client-go"
	"github.com/jobhunter/client-go/credstore"
	"github.com/jobhunter/client-go/rest"
	"github.com/jobhunter/client-go/session"
)

const refreshCookie = "refresh_token"

type account struct {
	password string
	identity jobhunter.Identity
}

// Option configures the fake server.
type Option func(*Server)

// WithUser adds an account. A nil identity role puts the account in the
// unassigned state after login.
func WithUser(username, password string, identity jobhunter.Identity) Option {
	return func(s *Server) {
		if identity.Email == "" {
			identity.Email = username
		}
		s.accounts[username] = &account{password: password, identity: identity}
	}
}

// WithGoogleToken maps a federated ID token onto an existing account.
func WithGoogleToken(idToken, username string) Option {
	return func(s *Server) { s.googleTokens[idToken] = username }
}

// WithAccessTokenTTL sets the lifetime of minted access tokens.
func WithAccessTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// Server is an in-memory JobHunter auth backend on an httptest listener.
// It mints signed access tokens, rotates refresh tokens through an
// HTTP-only cookie, and exposes knobs for failure injection.
type Server struct {
	mu            sync.Mutex
	accounts      map[string]*account
	googleTokens  map[string]string
	refreshTokens map[string]string // token id → username
	signingKey    []byte
	accessTTL     time.Duration
	epoch         int64
	failRefresh   bool
	failLogout    bool
	refreshCalls  int

	httpSrv *httptest.Server
}

// NewServer starts the fake backend.
func NewServer(opts ...Option) *Server {
	s := &Server{
		accounts:      make(map[string]*account),
		googleTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		signingKey:    []byte(uuid.NewString()),
		accessTTL:     time.Hour,
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/google", s.handleGoogle)
	mux.HandleFunc("GET /auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /auth/account", s.handleAccount)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/social-onboarding", s.handleSelectRole)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/change-password", s.handleChangePassword)
	s.httpSrv = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.httpSrv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpSrv.Close() }

// ExpireAccessTokens invalidates every access token minted so far; the
// next authenticated call answers 401 and forces a refresh.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

// SetFailRefresh makes the refresh endpoint answer 401 unconditionally.
func (s *Server) SetFailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// SetFailLogout makes the logout endpoint answer 500.
func (s *Server) SetFailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// RefreshCalls reports how many times the refresh endpoint was hit.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// NewClient returns a fully wired *jobhunter.Client backed by a fake
// server, and the server itself for failure injection. The caller owns
// both; close the server when done.
func NewClient(opts ...Option) (*jobhunter.Client, *Server, error) {
	srv := NewServer(opts...)

	store := credstore.New()
	api, err := rest.New(srv.URL(), store)
	if err != nil {
		srv.Close()
		return nil, nil, err
	}
	mgr := session.New(store, api)
	api.OnSessionExpired(mgr.Invalidate)

	client, err := jobhunter.NewClient(
		jobhunter.Config{BaseURL: srv.URL()},
		jobhunter.WithCredentialStore(store),
		jobhunter.WithAuthAPI(api),
		jobhunter.WithSession(mgr),
	)
	if err != nil {
		srv.Close()
		return nil, nil, err
	}
	return client, srv, nil
}

// --- handlers ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		writeError(w, http.StatusUnauthorized, "username or password is incorrect")
		return
	}
	s.issueSession(w, req.Username, acct)
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.googleTokens[req.IDToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid id token")
		return
	}
	s.issueSession(w, username, s.accounts[username])
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	if s.failRefresh {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	username, ok := s.refreshTokens[cookie.Value]
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// Rotate: old refresh token is single use.
	delete(s.refreshTokens, cookie.Value)
	s.setRefreshCookie(w, username)

	// Bare payload on purpose: the real backend skips the envelope here,
	// and the client must unwrap defensively.
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": s.mintToken(username),
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	writeData(w, map[string]any{"user": s.accounts[username].identity})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLogout {
		writeError(w, http.StatusInternalServerError, "logout unavailable")
		return
	}
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		delete(s.refreshTokens, cookie.Value)
	}
	writeData(w, nil)
}

func (s *Server) handleSelectRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	acct := s.accounts[username]
	if acct.identity.Role.Assigned() {
		writeError(w, http.StatusBadRequest, "role already assigned")
		return
	}
	acct.identity.Role = &jobhunter.Role{Name: req.Role}
	s.issueSession(w, username, acct)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req jobhunter.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}
	s.accounts[req.Email] = &account{
		password: req.Password,
		identity: jobhunter.Identity{
			ID:    int64(len(s.accounts) + 1),
			Name:  req.Name,
			Email: req.Email,
		},
	}
	writeData(w, nil)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"currentPassword"`
		Updated string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	acct := s.accounts[username]
	if acct.password != req.Current {
		writeError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	acct.password = req.Updated
	writeData(w, nil)
}

// --- internals (callers hold s.mu) ---

// issueSession mints the access token, sets the refresh cookie and writes
// the login-shaped payload.
func (s *Server) issueSession(w http.ResponseWriter, username string, acct *account) {
	s.setRefreshCookie(w, username)
	writeData(w, map[string]any{
		"access_token": s.mintToken(username),
		"user":         acct.identity,
	})
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, username string) {
	id := uuid.NewString()
	s.refreshTokens[id] = username
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) mintToken(username string) string {
	claims := jwt.MapClaims{
		"sub":   username,
		"epoch": s.epoch,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		panic(fmt.Sprintf("fake: sign token: %v", err))
	}
	return signed
}

// authenticate validates the bearer token and returns its account.
func (s *Server) authenticate(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return "", false
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(auth[len(prefix):], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", false
	}
	epoch, _ := claims["epoch"].(float64)
	if int64(epoch) != s.epoch {
		return "", false
	}
	sub, _ := claims["sub"].(string)
	if _, ok := s.accounts[sub]; !ok {
		return "", false
	}
	return sub, true
}

// --- envelope writers ---

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusOK,
		"message":    "ok",
		"data":       data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"message":    message,
		"data":       nil,
	})
}
