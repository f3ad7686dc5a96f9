package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yanqian/nutrition-advisor/internal/domain/advisor"
	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/domain/session"
	"github.com/yanqian/nutrition-advisor/internal/infra/config"
	"github.com/yanqian/nutrition-advisor/internal/infra/fitness/googlefit"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm/gemini"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm/mock"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm/tokens"
	"github.com/yanqian/nutrition-advisor/internal/infra/observability"
	"github.com/yanqian/nutrition-advisor/internal/infra/sessionstore"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideRecorder(reg *prometheus.Registry) metrics.Recorder {
	return observability.NewPromRecorder(reg)
}

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Google: session.GoogleConfig{
			ClientID:             cfg.Google.ClientID,
			ClientSecret:         cfg.Google.ClientSecret,
			RedirectURL:          cfg.Google.RedirectURL,
			PostLoginRedirectURL: cfg.Google.PostLoginRedirectURL,
			Scopes:               cfg.Google.Scopes,
		},
	}
}

func provideSessionStore() session.Store {
	return sessionstore.NewMemoryStore()
}

func provideFitnessConfig(cfg *config.Config) fitness.Config {
	return fitness.Config{
		DataSourceID: cfg.Fitness.DataSourceID,
		MetricName:   cfg.Fitness.MetricName,
		WindowDays:   cfg.Fitness.WindowDays,
	}
}

func provideFitnessClient(cfg *config.Config) fitness.Client {
	return googlefit.NewClient(cfg.Fitness.APIBaseURL, cfg.Fitness.Timeout)
}

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Prompt:      cfg.Advisor.Prompt,
	}
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) (llm.Generator, error) {
	if cfg.LLM.Mode == llm.ModeMock {
		logger.Warn("llm mode is mock, advice is canned")
		return mock.NewGenerator(), nil
	}
	return gemini.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideTokenCounter() advisor.TokenCounter {
	return tokens.NewCounter()
}
