// Package llm holds the types shared by the text generation adapters.
package llm

import (
	"context"
	"errors"

	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// Provider modes accepted in configuration.
const (
	ModeGemini = "gemini"
	ModeMock   = "mock"
)

// ErrQuotaExceeded marks a rejection caused by provider rate or quota limits.
var ErrQuotaExceeded = errors.New("quota exceeded")

// Request is a single prompt submitted to a text model.
type Request struct {
	Model       string
	Prompt      string
	Temperature float32
}

// Response carries the generated text and the usage reported by the provider.
type Response struct {
	Text  string
	Usage metrics.TokenUsage
}

// Generator produces text for a prompt. Implementations must not retry: model
// output is non-deterministic, so a second call is not equivalent to the first.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
