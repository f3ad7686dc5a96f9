package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrition-advisor/internal/domain/advisor"
	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/domain/questionnaire"
	"github.com/yanqian/nutrition-advisor/internal/domain/session"
	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	sessions   session.Service
	fitnessSvc fitness.Service
	advisorSvc advisor.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(sessions session.Service, fitnessSvc fitness.Service, advisorSvc advisor.Service, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		fitnessSvc: fitnessSvc,
		advisorSvc: advisorSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

type heartRateResponse struct {
	fitness.Series
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Session reports whether the caller has connected a Google account.
func (h *Handler) Session(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		c.JSON(http.StatusOK, session.View{})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// GoogleAuthURL returns the consent URL for the caller's session.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	sess, _ := getSession(c)
	resp, err := h.sessions.AuthURL(c.Request.Context(), sess)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExchangeCode accepts an authorization code pasted by the user.
func (h *Handler) ExchangeCode(c *gin.Context) {
	var req session.CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	sess, _ := getSession(c)
	view, err := h.sessions.ExchangeCode(c.Request.Context(), sess, req.Code)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// GoogleCallback completes the redirect based flow and sends the browser back to the UI.
func (h *Handler) GoogleCallback(c *gin.Context) {
	target := h.sessions.PostLoginRedirect()
	if reason := c.Query("error"); reason != "" {
		h.logger.Warn("google consent declined", "reason", reason)
		c.Redirect(http.StatusFound, withQuery(target, "auth", "failed"))
		return
	}
	sess, _ := getSession(c)
	if _, err := h.sessions.Callback(c.Request.Context(), sess, c.Query("state"), c.Query("code")); err != nil {
		if apperrors.IsCode(err, "already_authenticated") {
			c.Redirect(http.StatusFound, withQuery(target, "auth", "ok"))
			return
		}
		h.logger.Warn("google callback failed", "error", err)
		c.Redirect(http.StatusFound, withQuery(target, "auth", "failed"))
		return
	}
	c.Redirect(http.StatusFound, withQuery(target, "auth", "ok"))
}

// HeartRate returns the trailing heart rate series. A failed fetch still
// answers 200 with an empty series so the page keeps working.
func (h *Handler) HeartRate(c *gin.Context) {
	sess, _ := getSession(c)
	series, err := h.fitnessSvc.HeartRate(c.Request.Context(), sess.Credential())
	resp := heartRateResponse{Series: series}
	if err != nil {
		resp.Message = advisor.NoDataNotice
		resp.Error = apperrors.MessageOf(err)
	} else if series.Len() == 0 {
		resp.Message = advisor.NoDataNotice
	}
	c.JSON(http.StatusOK, resp)
}

// Questionnaire describes the form fields and their allowed values.
func (h *Handler) Questionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, questionnaire.FormSchema())
}

// Advise validates the questionnaire and asks the model for dietary advice.
func (h *Handler) Advise(c *gin.Context) {
	var form questionnaire.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	sess, _ := getSession(c)
	resp, err := h.advisorSvc.Advise(c.Request.Context(), sess.Credential(), form)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
