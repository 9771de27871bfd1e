package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const prompt = "fqa> "

// DemoQuestions are the questions of the reference transcript.
var DemoQuestions = []string{
	"Total number of trades for HoldCo 1?",
	"Which funds performed better depending on the yearly Profit and Loss?",
	"Who won the FIFA world cup?",
	"What is the total number of holdings for Heather?",
}

// Run starts an interactive session: every line read from 'r' is an
// independent question, answered on 'w'.
//
// 'prompts' are asked first, as if typed by the user. The session ends on
// "bye", at the end of 'r', or on the first error.
func (p *Pipeline) Run(ctx context.Context, w io.Writer, r io.Reader, prompts ...string) error {
	in := bufio.NewReader(r)
	fmt.Fprintln(w, "Ask anything about the portfolios. Type 'bye' to exit.")

	for {
		fmt.Fprint(w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				fmt.Fprintln(w)
				continue
			}
			fmt.Fprintln(w, input)
		} else {
			var err error
			input, err = in.ReadString('\n')
			if err != nil && (err != io.EOF || strings.TrimSpace(input) == "") {
				if err == io.EOF {
					fmt.Fprintln(w)
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
		}

		if input == "bye" {
			return nil
		}

		answer, err := p.Ask(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, answer)
	}
}

// Transcript asks every question in turn and writes a User/Bot transcript to 'w'.
func (p *Pipeline) Transcript(ctx context.Context, w io.Writer, questions ...string) error {
	for _, q := range questions {
		fmt.Fprintf(w, "User: %s\n", q)
		answer, err := p.Ask(ctx, q)
		if err != nil {
			return fmt.Errorf("question %q: %w", q, err)
		}
		fmt.Fprintf(w, "Bot:  %s\n\n", answer)
	}
	return nil
}
