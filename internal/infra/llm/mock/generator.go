package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/nutrition-advisor/internal/infra/llm"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// Generator returns canned advice so the service can run without an API key.
type Generator struct{}

// NewGenerator constructs the mock provider.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate implements llm.Generator.
func (g *Generator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	words := len(strings.Fields(req.Prompt))
	text := fmt.Sprintf(
		"Demo mode: advice is not generated by a model (prompt of %d words received). "+
			"Eat a varied diet with vegetables, legumes and whole grains, stay hydrated, and consult a doctor "+
			"or registered dietitian before acting on any suggestion.",
		words,
	)
	return llm.Response{Text: text, Usage: metrics.TokenUsage{}}, nil
}

var _ llm.Generator = (*Generator)(nil)
