//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/nutrition-advisor/internal/bootstrap"
	"github.com/yanqian/nutrition-advisor/internal/domain/advisor"
	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/domain/session"
	"github.com/yanqian/nutrition-advisor/internal/infra/config"
	httpiface "github.com/yanqian/nutrition-advisor/internal/interface/http"
	"github.com/yanqian/nutrition-advisor/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRegistry,
		provideRecorder,
		provideSessionConfig,
		provideSessionStore,
		provideFitnessConfig,
		provideFitnessClient,
		provideAdvisorConfig,
		provideGenerator,
		provideTokenCounter,
		session.NewService,
		fitness.NewService,
		advisor.NewService,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
