package session

import (
	"time"

	"golang.org/x/oauth2"
)

// State is the authentication state of a session.
type State int

const (
	// StateUnauthenticated is the initial state.
	StateUnauthenticated State = iota
	// StateAuthenticated is terminal for the lifetime of the session.
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Config drives the OAuth flow and session lifetime.
type Config struct {
	Secret    string
	TTL       time.Duration
	Google    GoogleConfig
	IssuerURL string
}

// GoogleConfig holds OAuth client settings for Google Fit access.
type GoogleConfig struct {
	ClientID             string
	ClientSecret         string
	RedirectURL          string
	PostLoginRedirectURL string
	Scopes               []string
	// Endpoint overrides google.Endpoint when non-empty.
	Endpoint oauth2.Endpoint
}

// View is the client visible summary of a session.
type View struct {
	Authenticated bool   `json:"authenticated"`
	Account       string `json:"account,omitempty"`
}

// AuthURLResponse carries the authorization link for the presentation layer.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// CodeRequest is the manual authorization code entry payload.
type CodeRequest struct {
	Code string `json:"code"`
}
