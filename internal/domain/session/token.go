package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
)

func issueToken(secret string, sess *Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sess.ID.String(),
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", apperrors.Wrap("session_error", "failed to sign session token", err)
	}
	return signed, nil
}

func parseToken(secret, token string, now time.Time) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return uuid.Nil, apperrors.Wrap("invalid_session", "session token validation failed", err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return uuid.Nil, apperrors.Wrap("invalid_session", "session token invalid", nil)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.Wrap("invalid_session", "session token subject invalid", err)
	}
	return id, nil
}
