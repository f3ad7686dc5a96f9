package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrition-advisor/internal/domain/session"
)

// loadSession attaches the caller's session when the cookie names a live one.
func loadSession(svc session.Service, cookies cookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, found, err := svc.Lookup(c.Request.Context(), cookies.read(c))
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "session_error", "failed to load session", err))
			return
		}
		if found {
			setSession(c, sess)
		}
		c.Next()
	}
}

// ensureSession starts a session for callers that arrive without one. Only the
// OAuth routes need state to survive the round trip to Google.
func ensureSession(svc session.Service, cookies cookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := getSession(c); ok {
			c.Next()
			return
		}
		sess, token, err := svc.Resolve(c.Request.Context(), cookies.read(c))
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "session_error", "failed to start session", err))
			return
		}
		if token != "" {
			cookies.write(c, token)
		}
		setSession(c, sess)
		c.Next()
	}
}

// requireAuthenticated rejects sessions that have not completed the OAuth exchange.
func requireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := getSession(c)
		if !ok || !sess.Authenticated() {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthenticated", "connect your Google account first", nil))
			return
		}
		c.Next()
	}
}
