package agent

import (
	"context"
	"fmt"
)

// NewBackend creates the backend of 'provider': groq, openai or gemini.
// Empty 'baseURL' and 'model' select the provider's defaults.
func NewBackend(ctx context.Context, provider, apiKey, baseURL, model string) (Backend, error) {
	switch provider {
	case "groq":
		return NewGroq(apiKey, baseURL, model), nil
	case "openai":
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAI(provider, apiKey, baseURL, model), nil
	case "gemini":
		g, err := NewGemini(ctx, apiKey, baseURL, model)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", provider)
	}
}
