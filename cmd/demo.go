package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/fundqa/pipeline"
	"github.com/google/subcommands"
)

type demoCmd struct{}

func (*demoCmd) Name() string     { return "demo" }
func (*demoCmd) Synopsis() string { return "ask the reference questions and print the transcript" }
func (*demoCmd) Usage() string {
	return `fqa demo

  Asks, one after the other, a fixed set of questions covering a count,
  a ranking, an unrelated question and an unknown portfolio, and prints
  the User/Bot transcript.
`
}

func (*demoCmd) SetFlags(_ *flag.FlagSet) {}

func (*demoCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, true)
	if err != nil {
		return fail("opening datasets", err)
	}
	defer a.close()

	if err := a.pipeline.Transcript(ctx, os.Stdout, pipeline.DemoQuestions...); err != nil {
		return fail("running demo", err)
	}
	return subcommands.ExitSuccess
}
