package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrition-advisor/internal/domain/session"
)

const sessionKey = "session"

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
}

func getSession(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok && sess != nil
}
