// Package agent answers questions from a fact-sheet using a language model.
//
// The model is instructed to use nothing but the fact-sheet and to reply
// with [Refusal] otherwise. That contract is enforced by the prompt only,
// unless [Answerer.Strict] is set.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Backend is a language model service.
//
// Implementations must generate deterministically (temperature 0).
type Backend interface {
	// Generate returns the model's text reply to 'user', given the 'system' instruction.
	Generate(ctx context.Context, system, user string) (string, error)
	// Name identifies the provider and model, e.g. "groq/llama-3.3-70b-versatile".
	Name() string
}

// DefaultTimeout bounds a backend call when Answerer.Timeout is not set.
const DefaultTimeout = 60 * time.Second

// Answerer answers questions from a fact-sheet.
type Answerer struct {
	Backend Backend
	// Timeout bounds each backend call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Strict replaces answers quoting numbers absent from the fact-sheet
	// and the question with the Refusal.
	Strict bool
	Logger *zap.Logger
}

// New creates an Answerer on top of 'b'.
func New(b Backend, logger *zap.Logger) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{Backend: b, Logger: logger}
}

// BackendError is returned when the language model could not produce an answer.
// It is never retried.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Timeout reports whether the call was abandoned after Answerer.Timeout.
func (e *BackendError) Timeout() bool { return errors.Is(e.Err, context.DeadlineExceeded) }

// ErrNoContent is the BackendError cause when the model returns no candidate reply.
// An empty reply is not an error, it is returned as is.
var ErrNoContent = errors.New("no content generated")

// Answer asks the backend the 'question' about 'factSheet' and returns its
// reply verbatim, as an assistant message.
func (a *Answerer) Answer(ctx context.Context, factSheet, question string) (Message, error) {
	logger := a.logger()
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := a.Backend.Generate(ctx, SystemPrompt, UserPrompt(factSheet, question))
	logger.Debug("backend call",
		zap.String("backend", a.Backend.Name()),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return Message{}, &BackendError{Backend: a.Backend.Name(), Err: err}
	}

	if a.Strict {
		if unknown := ungroundedNumbers(text, factSheet, question); len(unknown) > 0 {
			logger.Warn("answer quotes figures absent from the fact-sheet, refusing",
				zap.Strings("numbers", unknown),
				zap.String("answer", text),
			)
			text = Refusal
		}
	}
	return Message{Role: RoleAssistant, Content: text}, nil
}

func (a *Answerer) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
