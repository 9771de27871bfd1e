package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type askCmd struct {
	showSheet bool
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "answer a single question about the portfolios" }
func (*askCmd) Usage() string {
	return `fqa ask [-sheet] <question>

  Computes the fact-sheet from the datasets and asks the language model
  the question. The model answers from the fact-sheet only, and replies
  "Sorry can not find the answer" otherwise.

Usage Examples:
$ fqa ask Total number of trades for HoldCo 1?
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.showSheet, "sheet", false, "Print the fact-sheet sent to the model before the answer.")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := strings.TrimSpace(strings.Join(f.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Error: missing question")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx, true)
	if err != nil {
		return fail("opening datasets", err)
	}
	defer a.close()

	s, err := a.pipeline.Invoke(ctx, question)
	if err != nil {
		return fail("answering", err)
	}
	if c.showSheet {
		fmt.Println(s.FactSheet)
		fmt.Println()
	}
	fmt.Println(s.Answer())
	return subcommands.ExitSuccess
}
