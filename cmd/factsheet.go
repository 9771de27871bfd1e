package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type factsheetCmd struct{}

func (*factsheetCmd) Name() string     { return "factsheet" }
func (*factsheetCmd) Synopsis() string { return "print the fact-sheet the assistant is grounded on" }
func (*factsheetCmd) Usage() string {
	return `fqa factsheet

  Prints the plain text fact-sheet computed from the datasets, exactly as
  it is sent to the language model.
`
}

func (*factsheetCmd) SetFlags(_ *flag.FlagSet) {}

func (*factsheetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		return fail("opening datasets", err)
	}
	defer a.close()

	fmt.Println(a.pipeline.FactSheet())
	return subcommands.ExitSuccess
}
