// Package pipeline answers one question at a time: it aggregates the
// datasets into a fact-sheet, then has the agent answer from it.
//
// Every invocation starts from scratch. Nothing is remembered from one
// question to the next.
package pipeline

import (
	"context"
	"fmt"

	"github.com/etnz/fundqa"
	"github.com/etnz/fundqa/agent"
	"github.com/etnz/fundqa/renderer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage of an invocation.
type Stage int

const (
	Aggregating Stage = iota
	Answering
	Done
)

func (s Stage) String() string {
	switch s {
	case Aggregating:
		return "AGGREGATING"
	case Answering:
		return "ANSWERING"
	case Done:
		return "DONE"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// State is the conversation of a single invocation.
type State struct {
	ID        string
	Stage     Stage
	Messages  []agent.Message
	FactSheet string
}

// Question returns the content of the last user message.
func (s *State) Question() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == agent.RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Answer returns the content of the last message when it is the assistant's.
func (s *State) Answer() string {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Role == agent.RoleAssistant {
		return s.Messages[n-1].Content
	}
	return ""
}

// Pipeline answers questions about a pair of datasets.
//
// Datasets are only read, a Pipeline can serve concurrent invocations.
type Pipeline struct {
	Trades   []fundqa.TradeRecord
	Holdings []fundqa.HoldingRecord
	Answerer *agent.Answerer
	Logger   *zap.Logger
}

// New creates a Pipeline on the datasets.
func New(trades []fundqa.TradeRecord, holdings []fundqa.HoldingRecord, a *agent.Answerer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Trades: trades, Holdings: holdings, Answerer: a, Logger: logger}
}

// Invoke runs both stages once for 'question'.
//
// On error the returned State is the one reached when the error occurred.
func (p *Pipeline) Invoke(ctx context.Context, question string) (*State, error) {
	s := &State{
		ID:       uuid.NewString(),
		Stage:    Aggregating,
		Messages: []agent.Message{{Role: agent.RoleUser, Content: question}},
	}
	logger := p.logger().With(zap.String("invocation", s.ID))

	summaries := fundqa.Aggregate(p.Trades, p.Holdings)
	s.FactSheet = renderer.FactSheet(summaries)
	logger.Debug("fact-sheet computed",
		zap.Int("trades", len(p.Trades)),
		zap.Int("holdings", len(p.Holdings)),
		zap.Int("portfolios", len(summaries)),
	)
	s.Stage = Answering

	msg, err := p.Answerer.Answer(ctx, s.FactSheet, question)
	if err != nil {
		logger.Error("answering failed", zap.Error(err))
		return s, err
	}
	s.Messages = append(s.Messages, msg)
	s.Stage = Done
	logger.Debug("question answered", zap.Bool("refused", msg.Content == agent.Refusal))
	return s, nil
}

// Ask runs Invoke and returns the answer only.
func (p *Pipeline) Ask(ctx context.Context, question string) (string, error) {
	s, err := p.Invoke(ctx, question)
	if err != nil {
		return "", err
	}
	return s.Answer(), nil
}

// FactSheet returns the fact-sheet the current datasets yield.
func (p *Pipeline) FactSheet() string {
	return renderer.FactSheet(fundqa.Aggregate(p.Trades, p.Holdings))
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
