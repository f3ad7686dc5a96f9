package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/nutrition-advisor/internal/domain/session"
	"github.com/yanqian/nutrition-advisor/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, sessions session.Service, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	if cfg.Metrics.Enabled && gatherer != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	cookies := newCookieSettings(cfg.Session)
	api.Use(
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		loadSession(sessions, cookies),
	)
	{
		api.GET("/session", handler.Session)
		api.GET("/questionnaire", handler.Questionnaire)

		oauth := api.Group("/oauth/google")
		oauth.Use(ensureSession(sessions, cookies))
		oauth.GET("/url", handler.GoogleAuthURL)
		oauth.POST("/code", handler.ExchangeCode)
		oauth.GET("/callback", handler.GoogleCallback)

		authed := api.Group("")
		authed.Use(requireAuthenticated())
		authed.GET("/heart-rate", handler.HeartRate)
		authed.POST("/advice", handler.Advise)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
