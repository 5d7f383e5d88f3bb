package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/catx/internal/models"
)

// CatalogAccount is a user known to [CatalogServer].
type CatalogAccount struct {
	Identifier string
	Secret     string
	Credential string
	Identity   models.Identity
}

// SearchFunc answers a multi-entity search for [CatalogServer].
type SearchFunc func(query string, limit int) models.SearchResults

// CatalogServer is an httptest server speaking the catalog backend contract:
//
//   - POST /auth/login
//   - GET /auth/me
//   - GET /search/multi
//   - GET /library (any authenticated endpoint)
type CatalogServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]CatalogAccount
	revoked  map[string]bool
	search   SearchFunc
	hits     map[string]int
	auth     map[string][]string
}

// NewCatalogServer starts a catalog server that is closed when the test ends.
func NewCatalogServer(t *testing.T, accounts ...CatalogAccount) *CatalogServer {
	t.Helper()

	s := &CatalogServer{
		accounts: make(map[string]CatalogAccount),
		revoked:  make(map[string]bool),
		hits:     make(map[string]int),
		auth:     make(map[string][]string),
	}
	for _, account := range accounts {
		s.accounts[account.Identifier] = account
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("GET /search/multi", s.handleSearch)
	mux.HandleFunc("GET /library", s.handleLibrary)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.auth[r.URL.Path] = append(s.auth[r.URL.Path], r.Header.Get("Authorization"))
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Revoke makes every later request carrying credential fail with 401.
func (s *CatalogServer) Revoke(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[credential] = true
}

// SetSearch replaces the search handler. The default returns empty results.
func (s *CatalogServer) SetSearch(fn SearchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = fn
}

// Hits returns the number of requests received for path.
func (s *CatalogServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// AuthHeaders returns the Authorization headers sent to path, in arrival order.
func (s *CatalogServer) AuthHeaders(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth[path]...)
}

func (s *CatalogServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Secret     string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	account, ok := s.accounts[body.Identifier]
	s.mu.Unlock()

	if !ok || account.Secret != body.Secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"credential": account.Credential,
		"identity":   account.Identity,
	})
}

func (s *CatalogServer) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, account.Identity)
}

func (s *CatalogServer) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": []any{}})
}

func (s *CatalogServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.Lock()
	fn := s.search
	s.mu.Unlock()

	results := models.SearchResults{}
	if fn != nil {
		results = fn(query, limit)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *CatalogServer) authenticate(r *http.Request) (CatalogAccount, bool) {
	credential, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || credential == "" {
		return CatalogAccount{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[credential] {
		return CatalogAccount{}, false
	}
	for _, account := range s.accounts {
		if account.Credential == credential {
			return account, true
		}
	}
	return CatalogAccount{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
