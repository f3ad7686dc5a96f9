package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
)

func TestResolveCreatesAndReusesSession(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	sess, token, err := svc.Resolve(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, StateUnauthenticated, sess.State())

	again, newToken, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Empty(t, newToken)
	require.Same(t, sess, again)

	other, otherToken, err := svc.Resolve(ctx, "not-a-jwt")
	require.NoError(t, err)
	require.NotEmpty(t, otherToken)
	require.NotEqual(t, sess.ID, other.ID)
}

func TestResolveExpiredSessionStartsOver(t *testing.T) {
	svc := newTestService(t, nil)
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, token, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)

	now = now.Add(svc.cfg.TTL + time.Minute)
	next, nextToken, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotEmpty(t, nextToken)
	require.NotEqual(t, sess.ID, next.ID)
}

func TestLookupNeverCreatesSession(t *testing.T) {
	svc := newTestService(t, nil)
	store := svc.store.(*mapStore)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-jwt"} {
		sess, found, err := svc.Lookup(ctx, token)
		require.NoError(t, err)
		require.False(t, found)
		require.Nil(t, sess)
	}
	require.Empty(t, store.sessions)

	created, token, err := svc.Resolve(ctx, "")
	require.NoError(t, err)
	got, found, err := svc.Lookup(ctx, token)
	require.NoError(t, err)
	require.True(t, found)
	require.Same(t, created, got)
	require.Len(t, store.sessions, 1)
}

func TestLookupDropsExpiredSession(t *testing.T) {
	svc := newTestService(t, nil)
	store := svc.store.(*mapStore)
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, token, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)

	now = now.Add(svc.cfg.TTL + time.Minute)
	_, found, err := svc.Lookup(context.Background(), token)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, store.sessions)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	sess := New(time.Now(), time.Hour)
	token, err := issueToken("secret-one", sess)
	require.NoError(t, err)

	_, err = parseToken("secret-two", token, time.Now())
	require.True(t, apperrors.IsCode(err, "invalid_session"))

	id, err := parseToken("secret-one", token, time.Now())
	require.NoError(t, err)
	require.Equal(t, sess.ID, id)
}

func TestAuthURL(t *testing.T) {
	svc := newTestService(t, nil)
	sess := New(time.Now(), time.Hour)

	resp, err := svc.AuthURL(context.Background(), sess)
	require.NoError(t, err)

	parsed, err := url.Parse(resp.URL)
	require.NoError(t, err)
	query := parsed.Query()
	require.Equal(t, "client-id", query.Get("client_id"))
	require.Equal(t, "offline", query.Get("access_type"))
	require.Equal(t, "consent", query.Get("prompt"))
	require.Equal(t, "S256", query.Get("code_challenge_method"))
	require.NotEmpty(t, query.Get("code_challenge"))
	require.Contains(t, query.Get("scope"), "https://www.googleapis.com/auth/fitness.heart_rate.read")
	require.Contains(t, query.Get("scope"), "https://www.googleapis.com/auth/fitness.activity.read")

	pending, ok := sess.pendingAuth()
	require.True(t, ok)
	require.Equal(t, pending.state, query.Get("state"))
}

func TestExchangeCodeAuthenticatesOnce(t *testing.T) {
	provider := newTokenServer(t)
	svc := newTestService(t, provider)
	sess := New(time.Now(), time.Hour)

	_, err := svc.AuthURL(context.Background(), sess)
	require.NoError(t, err)
	pending, _ := sess.pendingAuth()

	view, err := svc.ExchangeCode(context.Background(), sess, " good-code ")
	require.NoError(t, err)
	require.True(t, view.Authenticated)
	require.Equal(t, StateAuthenticated, sess.State())
	require.Equal(t, pending.verifier, provider.lastVerifier())

	tok, err := sess.Credential().Token()
	require.NoError(t, err)
	require.Equal(t, "access-good-code", tok.AccessToken)

	_, err = svc.ExchangeCode(context.Background(), sess, "good-code")
	require.True(t, apperrors.IsCode(err, "already_authenticated"))
	_, err = svc.AuthURL(context.Background(), sess)
	require.True(t, apperrors.IsCode(err, "already_authenticated"))
}

func TestExchangeCodeFailureKeepsUnauthenticated(t *testing.T) {
	provider := newTokenServer(t)
	svc := newTestService(t, provider)
	sess := New(time.Now(), time.Hour)

	_, err := svc.ExchangeCode(context.Background(), sess, "expired")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "auth_exchange_failed"))
	require.False(t, sess.Authenticated())
	require.Nil(t, sess.Credential())

	view, err := svc.ExchangeCode(context.Background(), sess, "good-code")
	require.NoError(t, err)
	require.True(t, view.Authenticated)
}

func TestExchangeCodeEmpty(t *testing.T) {
	svc := newTestService(t, newTokenServer(t))
	_, err := svc.ExchangeCode(context.Background(), New(time.Now(), time.Hour), "   ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestExchangeCodeNotConfigured(t *testing.T) {
	svc := newTestService(t, nil)
	svc.cfg.Google.ClientSecret = ""
	_, err := svc.ExchangeCode(context.Background(), New(time.Now(), time.Hour), "good-code")
	require.True(t, apperrors.IsCode(err, "auth_not_configured"))
}

func TestExchangeCodeReadsAccountFromIDToken(t *testing.T) {
	provider := newTokenServer(t)
	provider.idToken = "raw-id-token"
	svc := newTestService(t, provider)
	svc.verifyToken = func(ctx context.Context, raw string) (string, error) {
		require.Equal(t, "raw-id-token", raw)
		return "runner@example.com", nil
	}

	view, err := svc.ExchangeCode(context.Background(), New(time.Now(), time.Hour), "good-code")
	require.NoError(t, err)
	require.Equal(t, "runner@example.com", view.Account)
}

func TestExchangeCodeIgnoresIDTokenFailure(t *testing.T) {
	provider := newTokenServer(t)
	provider.idToken = "raw-id-token"
	svc := newTestService(t, provider)
	svc.verifyToken = func(ctx context.Context, raw string) (string, error) {
		return "", errors.New("bad signature")
	}

	view, err := svc.ExchangeCode(context.Background(), New(time.Now(), time.Hour), "good-code")
	require.NoError(t, err)
	require.True(t, view.Authenticated)
	require.Empty(t, view.Account)
}

func TestCallbackValidatesState(t *testing.T) {
	provider := newTokenServer(t)
	svc := newTestService(t, provider)
	sess := New(time.Now(), time.Hour)

	_, err := svc.Callback(context.Background(), sess, "state", "good-code")
	require.True(t, apperrors.IsCode(err, "auth_exchange_failed"))

	_, err = svc.AuthURL(context.Background(), sess)
	require.NoError(t, err)
	_, err = svc.Callback(context.Background(), sess, "forged", "good-code")
	require.True(t, apperrors.IsCode(err, "auth_exchange_failed"))
	require.False(t, sess.Authenticated())

	pending, _ := sess.pendingAuth()
	view, err := svc.Callback(context.Background(), sess, pending.state, "good-code")
	require.NoError(t, err)
	require.True(t, view.Authenticated)
}

func TestExtractCode(t *testing.T) {
	require.Equal(t, "4/abc", extractCode(" 4/abc "))
	require.Equal(t, "4/abc", extractCode("http://localhost:8080/?state=x&code=4%2Fabc&scope=y"))
	require.Equal(t, "xyz", extractCode("code=xyz&state=1"))
}

func TestPostLoginRedirect(t *testing.T) {
	svc := newTestService(t, nil)
	require.Equal(t, "/", svc.PostLoginRedirect())
	svc.cfg.Google.PostLoginRedirectURL = "http://localhost:3000/"
	require.Equal(t, "http://localhost:3000/", svc.PostLoginRedirect())
}

func newTestService(t *testing.T, provider *tokenServer) *service {
	t.Helper()
	cfg := Config{
		Secret: "test-secret",
		TTL:    time.Hour,
		Google: GoogleConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/api/v1/oauth/google/callback",
		},
	}
	if provider != nil {
		cfg.Google.Endpoint = oauth2.Endpoint{
			AuthURL:  provider.srv.URL + "/auth",
			TokenURL: provider.srv.URL + "/token",
		}
	}
	svc := NewService(cfg, newMapStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.verifyToken = func(ctx context.Context, raw string) (string, error) {
		return "", errors.New("unexpected id token")
	}
	return svc
}

type tokenServer struct {
	srv      *httptest.Server
	idToken  string
	mu       sync.Mutex
	verifier string
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		ts.mu.Lock()
		ts.verifier = r.PostForm.Get("code_verifier")
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		code := r.PostForm.Get("code")
		if code != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
			return
		}
		body := map[string]any{
			"access_token":  "access-" + code,
			"token_type":    "Bearer",
			"refresh_token": "refresh-" + code,
			"expires_in":    3600,
		}
		if ts.idToken != "" {
			body["id_token"] = ts.idToken
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *tokenServer) lastVerifier() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.verifier
}

type mapStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[uuid.UUID]*Session)}
}

func (m *mapStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mapStore) Get(_ context.Context, id uuid.UUID) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *mapStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
