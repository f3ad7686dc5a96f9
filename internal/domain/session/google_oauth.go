package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

const googleIssuerURL = "https://accounts.google.com"

// DefaultScopes grants read access to activity and heart-rate data plus the
// account e-mail shown back to the user.
func DefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/fitness.activity.read",
		"https://www.googleapis.com/auth/fitness.heart_rate.read",
		oidc.ScopeOpenID,
		"email",
	}
}

type googleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (s *service) AuthURL(ctx context.Context, sess *Session) (AuthURLResponse, error) {
	if sess.Authenticated() {
		return AuthURLResponse{}, apperrors.Wrap("already_authenticated", "session is already authenticated", nil)
	}
	cfg, err := s.oauthConfig()
	if err != nil {
		return AuthURLResponse{}, err
	}
	state, err := randomString(32)
	if err != nil {
		return AuthURLResponse{}, apperrors.Wrap("auth_error", "failed to generate oauth state", err)
	}
	verifier := oauth2.GenerateVerifier()
	sess.setPending(state, verifier)

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	return AuthURLResponse{URL: authURL}, nil
}

func (s *service) ExchangeCode(ctx context.Context, sess *Session, code string) (View, error) {
	verifier := ""
	if pending, ok := sess.pendingAuth(); ok {
		verifier = pending.verifier
	}
	return s.exchange(ctx, sess, extractCode(code), verifier)
}

func (s *service) Callback(ctx context.Context, sess *Session, state, code string) (View, error) {
	if sess.Authenticated() {
		return View{}, apperrors.Wrap("already_authenticated", "session is already authenticated", nil)
	}
	pending, ok := sess.pendingAuth()
	if !ok || subtle.ConstantTimeCompare([]byte(pending.state), []byte(strings.TrimSpace(state))) != 1 {
		return View{}, apperrors.Wrap("auth_exchange_failed", "oauth state mismatch", nil)
	}
	return s.exchange(ctx, sess, strings.TrimSpace(code), pending.verifier)
}

func (s *service) exchange(ctx context.Context, sess *Session, code, verifier string) (View, error) {
	if sess.Authenticated() {
		return View{}, apperrors.Wrap("already_authenticated", "session is already authenticated", nil)
	}
	if code == "" {
		return View{}, apperrors.Wrap("invalid_input", "authorization code cannot be empty", nil)
	}
	cfg, err := s.oauthConfig()
	if err != nil {
		return View{}, err
	}

	opts := []oauth2.AuthCodeOption{}
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}
	start := time.Now()
	token, err := cfg.Exchange(ctx, code, opts...)
	if err != nil {
		s.recorder.ObserveExternalCall(metrics.ServiceOAuth, metrics.OutcomeFailure, time.Since(start))
		s.logger.Warn("oauth code exchange failed", "session_id", sess.ID.String(), "error", err)
		return View{}, apperrors.Wrap("auth_exchange_failed", "failed to exchange authorization code", err)
	}
	s.recorder.ObserveExternalCall(metrics.ServiceOAuth, metrics.OutcomeSuccess, time.Since(start))

	account := s.accountFromToken(ctx, token)
	// The refresh context must outlive this request.
	source := cfg.TokenSource(context.Background(), token)
	if !sess.authenticate(source, account) {
		return View{}, apperrors.Wrap("already_authenticated", "session is already authenticated", nil)
	}
	s.logger.Info("session authenticated", "session_id", sess.ID.String(), "has_refresh_token", token.RefreshToken != "")
	return sess.View(), nil
}

func (s *service) accountFromToken(ctx context.Context, token *oauth2.Token) string {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return ""
	}
	email, err := s.verifyToken(ctx, rawIDToken)
	if err != nil {
		s.logger.Warn("id token verification failed", "error", err)
		return ""
	}
	return email
}

func (s *service) verifyGoogleIDToken(ctx context.Context, rawToken string) (string, error) {
	provider, err := oidc.NewProvider(ctx, s.cfg.IssuerURL)
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to initialize oidc provider", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: s.cfg.Google.ClientID})
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", apperrors.Wrap("invalid_token", "failed to verify id token", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return "", apperrors.Wrap("invalid_token", "failed to parse id token claims", err)
	}
	if !claims.EmailVerified {
		return "", nil
	}
	return claims.Email, nil
}

func (s *service) oauthConfig() (*oauth2.Config, error) {
	googleCfg := s.cfg.Google
	if strings.TrimSpace(googleCfg.ClientID) == "" || strings.TrimSpace(googleCfg.ClientSecret) == "" || strings.TrimSpace(googleCfg.RedirectURL) == "" {
		return nil, apperrors.Wrap("auth_not_configured", "google oauth is not configured", nil)
	}
	endpoint := google.Endpoint
	if googleCfg.Endpoint.TokenURL != "" {
		endpoint = googleCfg.Endpoint
	}
	return &oauth2.Config{
		ClientID:     googleCfg.ClientID,
		ClientSecret: googleCfg.ClientSecret,
		RedirectURL:  googleCfg.RedirectURL,
		Scopes:       googleCfg.Scopes,
		Endpoint:     endpoint,
	}, nil
}

// extractCode accepts either a bare code or the full redirect URL pasted by the user.
func extractCode(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.Contains(trimmed, "code=") {
		return trimmed
	}
	if parsed, err := url.Parse(trimmed); err == nil {
		if code := parsed.Query().Get("code"); code != "" {
			return code
		}
	}
	if values, err := url.ParseQuery(strings.TrimPrefix(trimmed, "?")); err == nil {
		if code := values.Get("code"); code != "" {
			return code
		}
	}
	return trimmed
}

func randomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
