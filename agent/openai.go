package agent

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// GroqBaseURL is Groq's OpenAI compatible endpoint.
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.3-70b-versatile"

	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAI is a Backend on any OpenAI compatible chat completion API.
type OpenAI struct {
	client   *openai.Client
	provider string
	model    string
}

// NewOpenAI creates a backend on the chat completion API at 'baseURL'.
// An empty 'baseURL' is OpenAI's own.
func NewOpenAI(provider, apiKey, baseURL, model string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(config),
		provider: provider,
		model:    model,
	}
}

// NewGroq creates a backend on Groq. Empty 'baseURL' and 'model' are
// GroqBaseURL and DefaultGroqModel.
func NewGroq(apiKey, baseURL, model string) *OpenAI {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAI("groq", apiKey, baseURL, model)
}

func (o *OpenAI) Name() string { return o.provider + "/" + o.model }

func (o *OpenAI) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		// a zero temperature is dropped from the request (omitempty), the
		// smallest positive one is sent instead.
		Temperature: math.SmallestNonzeroFloat32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoContent
	}
	return resp.Choices[0].Message.Content, nil
}
