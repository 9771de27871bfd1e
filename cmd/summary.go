package cmd

import (
	"context"
	"flag"

	"github.com/etnz/fundqa"
	"github.com/etnz/fundqa/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	currency string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolios figures as a table" }
func (*summaryCmd) Usage() string {
	return `fqa summary [-c <currency>]

  Displays the number of trades, holdings and the yearly PnL of every
  portfolio, sorted by name.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Currency used to display amounts. Defaults to data.currency.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("opening datasets", err)
	}
	defer a.close()

	currency := c.currency
	if currency == "" {
		currency = a.cfg.Data.Currency
	}
	p := a.pipeline
	printMarkdown(renderer.FactSheetMarkdown(fundqa.Aggregate(p.Trades, p.Holdings), currency))
	return subcommands.ExitSuccess
}
