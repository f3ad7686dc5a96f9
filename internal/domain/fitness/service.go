package fitness

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
	"github.com/yanqian/nutrition-advisor/pkg/util"
)

// Service exposes the time-series reads used by the advice flow.
type Service interface {
	// HeartRate always returns a usable series; on failure the series is empty
	// and the error carries the fetch_failed code.
	HeartRate(ctx context.Context, cred oauth2.TokenSource) (Series, error)
}

// Client talks to the external fitness provider.
type Client interface {
	Fetch(ctx context.Context, cred oauth2.TokenSource, dataSourceID string, window Window, metric string) (Series, error)
}

type service struct {
	cfg      Config
	client   Client
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the fitness domain.
func NewService(cfg Config, client Client, recorder metrics.Recorder, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.DataSourceID) == "" {
		cfg.DataSourceID = DefaultHeartRateSource
	}
	if strings.TrimSpace(cfg.MetricName) == "" {
		cfg.MetricName = DefaultHeartRateMetric
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &service{
		cfg:      cfg,
		client:   client,
		recorder: recorder,
		logger:   logger.With("component", "fitness.service"),
		now:      util.NowUTC,
	}
}

func (s *service) HeartRate(ctx context.Context, cred oauth2.TokenSource) (Series, error) {
	if cred == nil {
		return EmptySeries(s.cfg.MetricName), apperrors.Wrap("fetch_failed", "no fitness credential in session", nil)
	}

	window := TrailingWindow(s.now(), s.cfg.WindowDays)
	start := time.Now()
	series, err := s.client.Fetch(ctx, cred, s.cfg.DataSourceID, window, s.cfg.MetricName)
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.ObserveExternalCall(metrics.ServiceFitness, metrics.OutcomeFailure, elapsed)
		s.logger.Warn("heart rate fetch failed", "error", err, "window_start_ms", window.StartMillis, "window_end_ms", window.EndMillis)
		return EmptySeries(s.cfg.MetricName), apperrors.Wrap("fetch_failed", "failed to fetch heart rate data", err)
	}
	s.recorder.ObserveExternalCall(metrics.ServiceFitness, metrics.OutcomeSuccess, elapsed)

	if series.Samples == nil {
		series.Samples = []Sample{}
	}
	if series.Metric == "" {
		series.Metric = s.cfg.MetricName
	}
	if series.Skipped > 0 {
		s.recorder.AddSkippedSamples(series.Metric, series.Skipped)
		s.logger.Warn("heart rate points without value skipped", "skipped", series.Skipped)
	}
	s.logger.Info("heart rate fetched", "samples", series.Len(), "window_days", s.cfg.WindowDays)
	return series, nil
}
