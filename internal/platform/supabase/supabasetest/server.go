// Package supabasetest runs an in-memory stand-in for the hosted backend:
// password, id_token and refresh_token grants, signup, logout, and the
// profiles/children tables with owner-only row security.
package supabasetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const AnonKey = "test-anon-key"

type ProfileRow struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
}

type ChildRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	Age       *int      `json:"age"`
}

type user struct {
	id        uuid.UUID
	email     string
	password  string
	confirmed bool
}

type Server struct {
	*httptest.Server

	mu                  sync.Mutex
	users               map[string]*user
	accessTokens        map[string]uuid.UUID
	refreshTokens       map[string]uuid.UUID
	profiles            map[uuid.UUID]ProfileRow
	children            []ChildRow
	requireConfirmation bool
	failLogout          bool
	failTables          map[string]int
	expiresIn           int64
	calls               map[string]int
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:         map[string]*user{},
		accessTokens:  map[string]uuid.UUID{},
		refreshTokens: map[string]uuid.UUID{},
		profiles:      map[uuid.UUID]ProfileRow{},
		failTables:    map[string]int{},
		expiresIn:     3600,
		calls:         map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.count, s.requireAPIKey)
	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/token", s.handleToken)
		r.Post("/signup", s.handleSignUp)
		r.Post("/logout", s.handleLogout)
	})
	r.Route("/rest/v1", func(r chi.Router) {
		r.Use(s.failTable)
		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleUpsertProfile)
		r.Get("/children", s.handleListChildren)
		r.Post("/children", s.handleInsertChild)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a confirmed user.
func (s *Server) AddUser(email, password string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{id: uuid.New(), email: email, password: password, confirmed: true}
	s.users[email] = u
	return u.id
}

func (s *Server) ConfirmUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.confirmed = true
	}
}

func (s *Server) RequireConfirmation(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireConfirmation = on
}

func (s *Server) FailLogout(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = on
}

// FailTable answers every request on table with status; 0 restores it.
func (s *Server) FailTable(table string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failTables, table)
		return
	}
	s.failTables[table] = status
}

func (s *Server) SetExpiresIn(seconds int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresIn = seconds
}

func (s *Server) PutProfile(p ProfileRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Server) Profile(id uuid.UUID) (ProfileRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok
}

func (s *Server) PutChild(c ChildRow) ChildRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.children = append(s.children, c)
	return c
}

// Calls counts requests by "METHOD /path".
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// ─── middleware ──────────────────────────────────────────────────────────────

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != AnonKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failTable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		s.mu.Lock()
		status := s.failTables[table]
		s.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]any{"code": "XX000", "message": "table " + table + " unavailable"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── auth ────────────────────────────────────────────────────────────────────

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		Provider     string `json:"provider"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAuthError(w, http.StatusBadRequest, "bad_json", "could not parse request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.URL.Query().Get("grant_type") {
	case "password":
		u, ok := s.users[body.Email]
		if !ok || u.password != body.Password {
			writeAuthError(w, http.StatusBadRequest, "invalid_credentials", "Invalid login credentials")
			return
		}
		if !u.confirmed {
			writeAuthError(w, http.StatusBadRequest, "email_not_confirmed", "Email not confirmed")
			return
		}
		writeJSON(w, http.StatusOK, s.issueLocked(u))
	case "id_token":
		if body.Provider != "apple" && body.Provider != "google" {
			writeAuthError(w, http.StatusBadRequest, "validation_failed", "unsupported provider")
			return
		}
		if !strings.HasPrefix(body.IDToken, "valid-") {
			writeAuthError(w, http.StatusBadRequest, "bad_jwt", "invalid id token")
			return
		}
		email := strings.TrimPrefix(body.IDToken, "valid-")
		u, ok := s.users[email]
		if !ok {
			u = &user{id: uuid.New(), email: email, confirmed: true}
			s.users[email] = u
		}
		writeJSON(w, http.StatusOK, s.issueLocked(u))
	case "refresh_token":
		id, ok := s.refreshTokens[body.RefreshToken]
		if !ok {
			writeAuthError(w, http.StatusBadRequest, "refresh_token_not_found", "Invalid Refresh Token")
			return
		}
		delete(s.refreshTokens, body.RefreshToken)
		for _, u := range s.users {
			if u.id == id {
				writeJSON(w, http.StatusOK, s.issueLocked(u))
				return
			}
		}
		writeAuthError(w, http.StatusBadRequest, "user_not_found", "User not found")
	default:
		writeAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported grant type")
	}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeAuthError(w, http.StatusBadRequest, "validation_failed", "email is required")
		return
	}
	if len(body.Password) < 6 {
		writeAuthError(w, http.StatusUnprocessableEntity, "weak_password", "Password should be at least 6 characters")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.Email]; exists {
		writeAuthError(w, http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
		return
	}
	u := &user{id: uuid.New(), email: body.Email, password: body.Password, confirmed: !s.requireConfirmation}
	s.users[body.Email] = u
	if !u.confirmed {
		writeJSON(w, http.StatusOK, userJSON(u))
		return
	}
	writeJSON(w, http.StatusOK, s.issueLocked(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLogout {
		writeAuthError(w, http.StatusInternalServerError, "unexpected_failure", "logout failed")
		return
	}
	token := bearer(r)
	if _, ok := s.accessTokens[token]; !ok {
		writeAuthError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	delete(s.accessTokens, token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) issueLocked(u *user) map[string]any {
	access := "at-" + uuid.NewString()
	refresh := "rt-" + uuid.NewString()
	s.accessTokens[access] = u.id
	s.refreshTokens[refresh] = u.id
	return map[string]any{
		"access_token":  access,
		"token_type":    "bearer",
		"expires_in":    s.expiresIn,
		"refresh_token": refresh,
		"user":          userJSON(u),
	}
}

func userJSON(u *user) map[string]any {
	return map[string]any{"id": u.id.String(), "email": u.email, "role": "authenticated"}
}

// ─── rest ────────────────────────────────────────────────────────────────────

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, ok := s.callerLocked(r)
	rows := []ProfileRow{}
	if ok {
		if p, found := s.profiles[caller]; found && matchesEq(r, "id", p.ID.String()) {
			rows = append(rows, p)
		}
	}
	writeRows(w, r, http.StatusOK, rows)
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var row ProfileRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "PGRST102", "message": "Empty or invalid json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, ok := s.callerLocked(r)
	if !ok || caller != row.ID {
		writeRLSViolation(w, "profiles")
		return
	}
	_, exists := s.profiles[row.ID]
	if exists && !strings.Contains(strings.Join(r.Header.Values("Prefer"), ","), "resolution=merge-duplicates") {
		writeJSON(w, http.StatusConflict, map[string]any{"code": "23505", "message": "duplicate key value violates unique constraint \"profiles_pkey\""})
		return
	}
	s.profiles[row.ID] = row
	writeRows(w, r, http.StatusCreated, []ProfileRow{row})
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, ok := s.callerLocked(r)
	rows := []ChildRow{}
	if ok {
		for _, c := range s.children {
			if c.UserID == caller {
				rows = append(rows, c)
			}
		}
	}
	writeRows(w, r, http.StatusOK, rows)
}

func (s *Server) handleInsertChild(w http.ResponseWriter, r *http.Request) {
	var row ChildRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil || row.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": "23502", "message": "null value in column \"first_name\""})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, ok := s.callerLocked(r)
	if !ok || caller != row.UserID {
		writeRLSViolation(w, "children")
		return
	}
	row.ID = uuid.New()
	s.children = append(s.children, row)
	writeRows(w, r, http.StatusCreated, []ChildRow{row})
}

func (s *Server) callerLocked(r *http.Request) (uuid.UUID, bool) {
	id, ok := s.accessTokens[bearer(r)]
	return id, ok
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func writeRows[T any](w http.ResponseWriter, r *http.Request, status int, rows []T) {
	if r.Method != http.MethodGet && !strings.Contains(strings.Join(r.Header.Values("Prefer"), ","), "return=representation") {
		w.WriteHeader(status)
		return
	}
	if slices.Contains(r.Header.Values("Accept"), "application/vnd.pgrst.object+json") {
		if len(rows) != 1 {
			writeJSON(w, http.StatusNotAcceptable, map[string]any{"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned"})
			return
		}
		writeJSON(w, status, rows[0])
		return
	}
	writeJSON(w, status, rows)
}

func matchesEq(r *http.Request, column, value string) bool {
	filter := r.URL.Query().Get(column)
	return filter == "" || filter == "eq."+value
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeRLSViolation(w http.ResponseWriter, table string) {
	writeJSON(w, http.StatusForbidden, map[string]any{
		"code":    "42501",
		"message": "new row violates row-level security policy for table \"" + table + "\"",
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "error_code": code, "msg": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
