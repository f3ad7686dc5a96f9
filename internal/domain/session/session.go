package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Session holds the state of one interactive session. The credential lives only
// in memory and is never serialized.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time

	mu         sync.Mutex
	state      State
	account    string
	credential oauth2.TokenSource
	pending    *pendingAuth
}

type pendingAuth struct {
	state    string
	verifier string
}

// New creates an unauthenticated session.
func New(now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		state:     StateUnauthenticated,
	}
}

// State returns the current authentication state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Credential returns the token source, or nil before authentication.
func (s *Session) Credential() oauth2.TokenSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// View summarizes the session for clients.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{Authenticated: s.state == StateAuthenticated, Account: s.account}
}

// Expired reports whether the session outlived its TTL.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) setPending(state, verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pendingAuth{state: state, verifier: verifier}
}

func (s *Session) pendingAuth() (pendingAuth, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return pendingAuth{}, false
	}
	return *s.pending, true
}

// authenticate performs the single Unauthenticated -> Authenticated transition.
func (s *Session) authenticate(cred oauth2.TokenSource, account string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticated {
		return false
	}
	s.state = StateAuthenticated
	s.credential = cred
	s.account = account
	s.pending = nil
	return true
}
