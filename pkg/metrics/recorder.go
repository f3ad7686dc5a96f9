package metrics

import "time"

// Outcome labels used when recording external calls.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// External service labels.
const (
	ServiceOAuth   = "oauth"
	ServiceFitness = "fitness"
	ServiceLLM     = "llm"
)

// Recorder receives instrumentation events from the domain services.
type Recorder interface {
	ObserveExternalCall(service, outcome string, elapsed time.Duration)
	AddSkippedSamples(metric string, n int)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ObserveExternalCall(string, string, time.Duration) {}

func (Nop) AddSkippedSamples(string, int) {}

var _ Recorder = Nop{}
