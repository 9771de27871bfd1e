// Package cmd implements the fqa command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fundqa"
	"github.com/etnz/fundqa/agent"
	"github.com/etnz/fundqa/config"
	"github.com/etnz/fundqa/logging"
	"github.com/etnz/fundqa/pipeline"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&askCmd{}, "questions")
	c.Register(&assistCmd{}, "questions")
	c.Register(&demoCmd{}, "questions")

	c.Register(&factsheetCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", "", "Path to the configuration file. Defaults to fqa.yaml when present.")
	tradesFile   = flag.String("trades", "", "Path to the trades CSV file. Overrides data.trades.")
	holdingsFile = flag.String("holdings", "", "Path to the holdings CSV file. Overrides data.holdings.")
	provider     = flag.String("provider", "", "Language model provider: groq, openai or gemini. Overrides backend.provider.")
	model        = flag.String("model", "", "Language model name. Overrides backend.model.")
	strict       = optionalBoolFlag("strict", "Refuse answers quoting figures that are not in the fact-sheet. Overrides answer.strict.")
	verbose      = flag.Bool("v", false, "Log debug messages.")
)

// optionalBool is a boolean flag that tells "-strict=false" apart from no flag at all.
type optionalBool struct {
	set   bool
	value bool
}

func optionalBoolFlag(name, usage string) *optionalBool {
	b := new(optionalBool)
	flag.Var(b, name, usage)
	return b
}

func (b *optionalBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return strconv.FormatBool(b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

// app is what every command needs: settings, logger and the loaded datasets.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
}

// loadConfig reads the configuration, command line flags taking precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *tradesFile != "" {
		cfg.Data.Trades = *tradesFile
	}
	if *holdingsFile != "" {
		cfg.Data.Holdings = *holdingsFile
	}
	if *provider != "" {
		cfg.Backend.Provider = *provider
	}
	if *model != "" {
		cfg.Backend.Model = *model
	}
	if strict.set {
		cfg.Answer.Strict = strict.value
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// openApp loads the configuration and the datasets. The language model
// backend is only created when 'answering' is set.
func openApp(ctx context.Context, answering bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	cols := fundqa.Columns{Portfolio: cfg.Data.PortfolioColumn, PnL: cfg.Data.PnLColumn}
	trades, err := fundqa.LoadTrades(cfg.Data.Trades, cols)
	if err != nil {
		return nil, fmt.Errorf("cannot load trades %q: %w", cfg.Data.Trades, err)
	}
	holdings, err := fundqa.LoadHoldings(cfg.Data.Holdings, cols)
	if err != nil {
		return nil, fmt.Errorf("cannot load holdings %q: %w", cfg.Data.Holdings, err)
	}
	logger.Info("datasets loaded",
		zap.String("trades", cfg.Data.Trades), zap.Int("trade_rows", len(trades)),
		zap.String("holdings", cfg.Data.Holdings), zap.Int("holding_rows", len(holdings)),
	)

	var answerer *agent.Answerer
	if answering {
		b := cfg.Backend
		backend, err := agent.NewBackend(ctx, b.Provider, b.APIKey, b.BaseURL, b.Model)
		if err != nil {
			return nil, err
		}
		answerer = agent.New(backend, logger)
		answerer.Timeout = b.Timeout
		answerer.Strict = cfg.Answer.Strict
		logger.Info("backend ready", zap.String("backend", backend.Name()), zap.Bool("strict", answerer.Strict))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline.New(trades, holdings, answerer, logger),
	}, nil
}

// close flushes the logs.
func (a *app) close() { _ = a.logger.Sync() }

// fail reports 'err' and returns the failure status.
func fail(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	return subcommands.ExitFailure
}

// printMarkdown renders markdown for the terminal, or prints it raw when it cannot.
func printMarkdown(md string) {
	fprintMarkdown(os.Stdout, md)
}

func fprintMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, md)
}
