// Package resttest provides a fake REST identity service for exercising the
// restauth verifier. Accounts are held in memory with bcrypt-hashed
// passwords, and the response body and status can be overridden to simulate
// broken deployments.
package resttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Server is an in-process credential verification endpoint. Use URL() as the
// restauth policy endpoint and Close() when done.
type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	accounts     map[string][]byte
	apiToken     string
	statusCode   int
	rawBody      string
	requests     int
	lastUsername string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIToken makes the server reject requests that don't carry the given
// api_token value.
func WithAPIToken(token string) Option {
	return func(s *Server) {
		s.apiToken = token
	}
}

// New starts a verification server with no accounts.
func New(opts ...Option) *Server {
	s := &Server{
		accounts: map[string][]byte{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL of the verification endpoint.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddAccount stores a username with a bcrypt hash of the given password.
func (s *Server) AddAccount(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = hash
	return nil
}

// RespondStatus makes every subsequent response use the given HTTP status.
func (s *Server) RespondStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = code
}

// RespondRaw makes every subsequent response return the given body verbatim,
// useful for simulating malformed JSON.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawBody = body
}

// Requests returns the number of verification calls received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// LastUsername returns the username field of the most recent request.
func (s *Server) LastUsername() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsername
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	token := r.PostFormValue("api_token")

	s.mu.Lock()
	s.requests++
	s.lastUsername = username
	statusCode := s.statusCode
	rawBody := s.rawBody
	hash, known := s.accounts[username]
	tokenOK := s.apiToken == "" || token == s.apiToken
	s.mu.Unlock()

	if statusCode != 0 {
		w.WriteHeader(statusCode)
		return
	}
	if rawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(rawBody))
		return
	}

	success := known && tokenOK &&
		bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		// Extra fields that real identity services attach; the verifier
		// must ignore them.
		"profile": map[string]interface{}{"display_name": username},
	})
}
