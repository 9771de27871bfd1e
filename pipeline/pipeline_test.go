package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/fundqa"
	"github.com/etnz/fundqa/agent"
	"github.com/etnz/fundqa/renderer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose init starts a stats worker.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// analyst is a fake model that obeys the grounding rules: it only reads the
// DATA REPORT of the prompt it is given.
type analyst struct {
	mu      sync.Mutex
	prompts []string
}

func (*analyst) Name() string { return "test/analyst" }

var (
	linePattern     = regexp.MustCompile(`^FUND: (.+) \| TRADES: (\d+) \| HOLDINGS: (\d+) \| YEARLY_PnL: (\S+)$`)
	tradesQuestion  = regexp.MustCompile(`(?i)number of trades for (.+?)\?$`)
	holdingQuestion = regexp.MustCompile(`(?i)number of holdings for (.+?)\?$`)
)

type fund struct {
	name             string
	trades, holdings string
	pnl              decimal.Decimal
}

func (a *analyst) Generate(_ context.Context, system, user string) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, user)
	a.mu.Unlock()

	if system != agent.SystemPrompt {
		return "", errors.New("unexpected system prompt")
	}
	report, question, ok := strings.Cut(strings.TrimPrefix(user, "DATA REPORT:\n"), "\n\nUSER QUESTION: \n")
	if !ok {
		return "", errors.New("malformed user prompt")
	}
	question = strings.TrimSpace(question)

	funds := make(map[string]fund)
	for _, line := range strings.Split(report, "\n")[1:] {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			return "", fmt.Errorf("malformed report line %q", line)
		}
		funds[m[1]] = fund{name: m[1], trades: m[2], holdings: m[3], pnl: decimal.RequireFromString(m[4])}
	}

	if m := tradesQuestion.FindStringSubmatch(question); m != nil {
		if f, ok := funds[m[1]]; ok {
			return fmt.Sprintf("%s has %s trades.", f.name, f.trades), nil
		}
	}
	if m := holdingQuestion.FindStringSubmatch(question); m != nil {
		if f, ok := funds[m[1]]; ok {
			return fmt.Sprintf("%s has %s holdings.", f.name, f.holdings), nil
		}
	}
	if strings.Contains(question, "performed better") && len(funds) > 0 {
		ranked := make([]fund, 0, len(funds))
		for _, f := range funds {
			ranked = append(ranked, f)
		}
		slices.SortFunc(ranked, func(a, b fund) int { return b.pnl.Cmp(a.pnl) })
		names := make([]string, len(ranked))
		for i, f := range ranked {
			names[i] = fmt.Sprintf("%s (%s)", f.name, f.pnl)
		}
		return strings.Join(names, " > "), nil
	}
	return agent.Refusal, nil
}

func holdCoTrades() []fundqa.TradeRecord {
	trades := make([]fundqa.TradeRecord, 43)
	for i := range trades {
		trades[i] = fundqa.TradeRecord{Portfolio: "HoldCo 1", Fields: map[string]string{"TradeId": fmt.Sprint(i)}}
	}
	return trades
}

func holdings(pairs ...string) []fundqa.HoldingRecord {
	var r []fundqa.HoldingRecord
	for i := 0; i < len(pairs); i += 2 {
		r = append(r, fundqa.HoldingRecord{Portfolio: pairs[i], PnL: decimal.RequireFromString(pairs[i+1])})
	}
	return r
}

func newPipeline(t *testing.T, trades []fundqa.TradeRecord, hs []fundqa.HoldingRecord) (*Pipeline, *analyst) {
	t.Helper()
	model := &analyst{}
	logger := zaptest.NewLogger(t)
	return New(trades, hs, agent.New(model, logger), logger), model
}

func TestTradesCount(t *testing.T) {
	p, model := newPipeline(t, holdCoTrades(), holdings("Fund B", "10"))

	s, err := p.Invoke(context.Background(), "Total number of trades for HoldCo 1?")
	require.NoError(t, err)

	assert.Contains(t, s.FactSheet, "FUND: HoldCo 1 | TRADES: 43 | HOLDINGS: 0 | YEARLY_PnL: 0.0")
	assert.Equal(t, "HoldCo 1 has 43 trades.", s.Answer())
	assert.NotContains(t, s.Answer(), "holding")
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], s.FactSheet)
}

func TestUnknownPortfolioIsRefused(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), holdings("Fund B", "10"))

	answer, err := p.Ask(context.Background(), "What is the total number of holdings for Heather?")
	require.NoError(t, err)

	assert.Equal(t, agent.Refusal, answer)
}

func TestUnrelatedQuestionIsRefused(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), holdings("Fund B", "10", "HoldCo 1", "5"))

	answer, err := p.Ask(context.Background(), "Who won the FIFA world cup?")
	require.NoError(t, err)

	assert.Equal(t, agent.Refusal, answer)
}

func TestPerformanceRanking(t *testing.T) {
	p, _ := newPipeline(t, nil, holdings("Fund B", "-12.345", "Garfield", "100.004", "Garfield", "0.5", "Fund B", "2"))

	answer, err := p.Ask(context.Background(), "Which funds performed better depending on the yearly Profit and Loss?")
	require.NoError(t, err)

	assert.Equal(t, "Garfield (100.5) > Fund B (-10.35)", answer)
}

func TestInvokeStates(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), nil)

	s, err := p.Invoke(context.Background(), "Total number of trades for HoldCo 1?")
	require.NoError(t, err)

	assert.Equal(t, Done, s.Stage)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Total number of trades for HoldCo 1?", s.Question())
	require.Len(t, s.Messages, 2)
	assert.Equal(t, agent.RoleUser, s.Messages[0].Role)
	assert.Equal(t, agent.RoleAssistant, s.Messages[1].Role)
}

func TestInvokeIsIndependent(t *testing.T) {
	p, model := newPipeline(t, holdCoTrades(), holdings("Fund B", "1"))
	ctx := context.Background()

	first, err := p.Invoke(ctx, "Total number of trades for HoldCo 1?")
	require.NoError(t, err)
	second, err := p.Invoke(ctx, "What is the total number of holdings for Fund B?")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, second.Messages, 2, "no history must leak from a previous invocation")
	// the fact-sheet is recomputed each time, with identical content.
	assert.ElementsMatch(t, strings.Split(first.FactSheet, "\n"), strings.Split(second.FactSheet, "\n"))
	assert.Len(t, model.prompts, 2)
	assert.Len(t, p.Trades, 43, "datasets must not be modified")
}

func TestInvokeConcurrently(t *testing.T) {
	p, model := newPipeline(t, holdCoTrades(), holdings("Fund B", "1"))

	var wg sync.WaitGroup
	answers := make([]string, 8)
	for i := range answers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answers[i], _ = p.Ask(context.Background(), "Total number of trades for HoldCo 1?")
		}()
	}
	wg.Wait()

	for _, a := range answers {
		assert.Equal(t, "HoldCo 1 has 43 trades.", a)
	}
	assert.Len(t, model.prompts, 8)
}

type failing struct{ err error }

func (failing) Name() string { return "test/failing" }
func (f failing) Generate(context.Context, string, string) (string, error) {
	return "", f.err
}

func TestInvokeBackendError(t *testing.T) {
	cause := errors.New("rate limited")
	p := New(holdCoTrades(), nil, agent.New(failing{cause}, nil), nil)

	s, err := p.Invoke(context.Background(), "Total number of trades for HoldCo 1?")

	var be *agent.BackendError
	require.True(t, errors.As(err, &be), "want *agent.BackendError, got %v", err)
	assert.ErrorIs(t, err, cause)
	require.NotNil(t, s)
	assert.Equal(t, Answering, s.Stage)
	assert.Len(t, s.Messages, 1)
	assert.Empty(t, s.Answer())
	assert.NotEmpty(t, s.FactSheet)

	_, err = p.Ask(context.Background(), "again")
	assert.ErrorIs(t, err, cause)
}

func TestFactSheet(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), holdings("Fund B", "1"))
	lines := strings.Split(p.FactSheet(), "\n")
	assert.Equal(t, renderer.FactSheetHeader, lines[0])
	assert.ElementsMatch(t, []string{
		"FUND: HoldCo 1 | TRADES: 43 | HOLDINGS: 0 | YEARLY_PnL: 0.0",
		"FUND: Fund B | TRADES: 0 | HOLDINGS: 1 | YEARLY_PnL: 1.0",
	}, lines[1:])
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "AGGREGATING", Aggregating.String())
	assert.Equal(t, "ANSWERING", Answering.String())
	assert.Equal(t, "DONE", Done.String())
	assert.Equal(t, "Stage(7)", Stage(7).String())
}

func TestRun(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), nil)
	var out bytes.Buffer
	in := strings.NewReader("Total number of trades for HoldCo 1?\n\nWho won the FIFA world cup?\nbye\nnever asked\n")

	err := p.Run(context.Background(), &out, in, "What is the total number of holdings for HoldCo 1?")
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "fqa> What is the total number of holdings for HoldCo 1?\nHoldCo 1 has 0 holdings.\n")
	assert.Contains(t, got, "HoldCo 1 has 43 trades.\n")
	assert.Contains(t, got, agent.Refusal+"\n")
	assert.NotContains(t, got, "never asked")
}

func TestRunEOF(t *testing.T) {
	p, model := newPipeline(t, holdCoTrades(), nil)
	var out bytes.Buffer

	err := p.Run(context.Background(), &out, strings.NewReader("Total number of trades for HoldCo 1?"))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "HoldCo 1 has 43 trades.")
	assert.Len(t, model.prompts, 1)
}

func TestTranscript(t *testing.T) {
	p, _ := newPipeline(t, holdCoTrades(), holdings("Fund B", "3.5", "Garfield", "-1"))
	var out bytes.Buffer

	require.NoError(t, p.Transcript(context.Background(), &out, DemoQuestions...))

	assert.Equal(t, `User: Total number of trades for HoldCo 1?
Bot:  HoldCo 1 has 43 trades.

User: Which funds performed better depending on the yearly Profit and Loss?
Bot:  Fund B (3.5) > HoldCo 1 (0) > Garfield (-1)

User: Who won the FIFA world cup?
Bot:  Sorry can not find the answer

User: What is the total number of holdings for Heather?
Bot:  Sorry can not find the answer

`, out.String())
}
