package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

// assistCmd is the subcommand for the interactive assistant.
type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the assistant"
}
func (*assistCmd) Usage() string {
	return `fqa assist [<question>...]

  Start an interactive session. Every line is a new, independent question.
  Questions given as arguments are asked first. Type 'bye' to exit.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, true)
	if err != nil {
		return fail("opening datasets", err)
	}
	defer a.close()

	if err := a.pipeline.Run(ctx, os.Stdout, os.Stdin, f.Args()...); err != nil {
		return fail("in assistant", err)
	}
	return subcommands.ExitSuccess
}
