package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/nutrition-advisor/pkg/metrics"
	"github.com/yanqian/nutrition-advisor/pkg/util"
)

// Service manages interactive sessions and the OAuth exchange that authenticates them.
type Service interface {
	// Resolve returns the session for token, creating a fresh one when token is
	// missing, invalid or expired. A non-empty second value is the token to hand
	// back to the client.
	Resolve(ctx context.Context, token string) (*Session, string, error)
	// Lookup returns the live session for token without creating one.
	Lookup(ctx context.Context, token string) (*Session, bool, error)
	AuthURL(ctx context.Context, sess *Session) (AuthURLResponse, error)
	ExchangeCode(ctx context.Context, sess *Session, code string) (View, error)
	Callback(ctx context.Context, sess *Session, state, code string) (View, error)
	PostLoginRedirect() string
}

type service struct {
	cfg         Config
	store       Store
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
	verifyToken func(ctx context.Context, rawIDToken string) (string, error)
}

// NewService constructs the session service.
func NewService(cfg Config, store Store, recorder metrics.Recorder, logger *slog.Logger) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if strings.TrimSpace(cfg.IssuerURL) == "" {
		cfg.IssuerURL = googleIssuerURL
	}
	if len(cfg.Google.Scopes) == 0 {
		cfg.Google.Scopes = DefaultScopes()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	svc := &service{
		cfg:      cfg,
		store:    store,
		recorder: recorder,
		logger:   logger.With("component", "session.service"),
		now:      util.NowUTC,
	}
	svc.verifyToken = svc.verifyGoogleIDToken
	return svc
}

func (s *service) Resolve(ctx context.Context, token string) (*Session, string, error) {
	sess, found, err := s.Lookup(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if found {
		return sess, "", nil
	}

	sess = New(s.now(), s.cfg.TTL)
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, "", err
	}
	signed, err := issueToken(s.cfg.Secret, sess)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("session started", "session_id", sess.ID.String())
	return sess, signed, nil
}

func (s *service) Lookup(ctx context.Context, token string) (*Session, bool, error) {
	if strings.TrimSpace(token) == "" {
		return nil, false, nil
	}
	now := s.now()
	id, err := parseToken(s.cfg.Secret, token, now)
	if err != nil {
		s.logger.Debug("discarding session token", "error", err)
		return nil, false, nil
	}
	sess, found, err := s.store.Get(ctx, id)
	if err != nil || !found {
		return nil, false, err
	}
	if sess.Expired(now) {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to drop expired session", "session_id", id.String(), "error", err)
		}
		return nil, false, nil
	}
	return sess, true, nil
}

func (s *service) PostLoginRedirect() string {
	if v := strings.TrimSpace(s.cfg.Google.PostLoginRedirectURL); v != "" {
		return v
	}
	return "/"
}
