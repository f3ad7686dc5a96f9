package advisor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/yanqian/nutrition-advisor/internal/domain/fitness"
	"github.com/yanqian/nutrition-advisor/internal/domain/questionnaire"
	"github.com/yanqian/nutrition-advisor/internal/infra/llm"
	apperrors "github.com/yanqian/nutrition-advisor/pkg/errors"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// Service produces dietary advice from a questionnaire and recent heart rate data.
type Service interface {
	Advise(ctx context.Context, cred oauth2.TokenSource, form questionnaire.Form) (Response, error)
}

// TokenCounter estimates prompt size when the provider does not report usage.
type TokenCounter interface {
	Count(ctx context.Context, text string) (int, error)
}

type service struct {
	cfg       Config
	fitness   fitness.Service
	generator llm.Generator
	counter   TokenCounter
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewService wires the advisor domain. counter may be nil.
func NewService(cfg Config, fitnessSvc fitness.Service, generator llm.Generator, counter TokenCounter, recorder metrics.Recorder, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = DefaultPrompt
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &service{
		cfg:       cfg,
		fitness:   fitnessSvc,
		generator: generator,
		counter:   counter,
		recorder:  recorder,
		logger:    logger.With("component", "advisor.service"),
	}
}

func (s *service) Advise(ctx context.Context, cred oauth2.TokenSource, form questionnaire.Form) (Response, error) {
	rec, err := questionnaire.Build(form)
	if err != nil {
		return Response{}, err
	}

	var notice string
	series, err := s.fitness.HeartRate(ctx, cred)
	if err != nil {
		notice = NoDataNotice
		s.logger.Warn("continuing without heart rate data", "error", err)
	}

	prompt, err := RenderPrompt(s.cfg.Prompt, BuildPayload(rec, series))
	if err != nil {
		return Response{}, apperrors.Wrap("advice_call_failed", "failed to prepare advice request", err)
	}
	s.logger.Info("requesting advice", "samples", series.Len())

	start := time.Now()
	out, err := s.generator.Generate(ctx, llm.Request{
		Model:       s.cfg.Model,
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
	})
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.ObserveExternalCall(metrics.ServiceLLM, metrics.OutcomeFailure, elapsed)
		s.logger.Error("advice call failed", "error", err)
		return Response{}, apperrors.Wrap("advice_call_failed", adviceFailureMessage(err), err)
	}
	if strings.TrimSpace(out.Text) == "" {
		s.recorder.ObserveExternalCall(metrics.ServiceLLM, metrics.OutcomeFailure, elapsed)
		return Response{}, apperrors.Wrap("advice_call_failed", "the model returned an empty response, please submit again", nil)
	}
	s.recorder.ObserveExternalCall(metrics.ServiceLLM, metrics.OutcomeSuccess, elapsed)

	usage := &out.Usage
	if out.Usage.IsZero() {
		usage = s.estimate(ctx, prompt)
	}
	return Response{
		Advice:     out.Text,
		HeartRate:  series,
		Notice:     notice,
		TokenUsage: usage,
	}, nil
}

// estimate approximates prompt usage. Failures leave usage unset.
func (s *service) estimate(ctx context.Context, prompt string) *metrics.TokenUsage {
	if s.counter == nil {
		return nil
	}
	n, err := s.counter.Count(ctx, prompt)
	if err != nil || n == 0 {
		s.logger.Debug("token estimate unavailable", "error", err)
		return nil
	}
	return &metrics.TokenUsage{PromptTokens: n, TotalTokens: n, Estimated: true}
}

func adviceFailureMessage(err error) string {
	if errors.Is(err, llm.ErrQuotaExceeded) {
		return "the advice service quota is exhausted, please try again later"
	}
	return "failed to get advice from the model, please submit again"
}
