package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"veogallery/internal/domain"
)

// Enhancement is a rewritten generation prompt with the model's rationale.
type Enhancement struct {
	EnhancedPrompt string   `json:"enhancedPrompt"`
	Reasoning      string   `json:"reasoning"`
	Improvements   []string `json:"improvements"`
	Provider       string   `json:"-"`
}

type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (*Enhancement, error)
}

// StaticEnhancer decorates the prompt with fixed cinematography cues. It is
// used when no model is configured or the model call fails.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(_ context.Context, prompt string) (*Enhancement, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.Invalid("Prompt is required")
	}
	subject := cases.Title(language.Und, cases.NoLower).String(strings.TrimRight(prompt, ". "))
	enhanced := fmt.Sprintf(
		"Cinematic wide establishing shot: %s. The camera slowly dollies in to a medium close-up, "+
			"soft golden-hour key light with gentle rim lighting and shallow depth of field. "+
			"Ambient natural sound with a subtle musical swell. 8 seconds, smooth 24fps motion.",
		subject,
	)
	return &Enhancement{
		EnhancedPrompt: enhanced,
		Reasoning:      fallbackReasoning,
		Improvements:   fallbackImprovements(),
		Provider:       staticProviderName,
	}, nil
}

var _ Enhancer = (*StaticEnhancer)(nil)
