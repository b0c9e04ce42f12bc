package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

func loadBank(path, mode, fallback string) (bank.Bank, error) {
	m, err := bank.ParseMode(mode)
	if err != nil {
		return bank.Bank{}, err
	}
	fb, err := bank.ParsePromptFallback(fallback)
	if err != nil {
		return bank.Bank{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return bank.Bank{}, err
	}
	defer f.Close()
	return bank.ParseReader(f, bank.Options{Mode: m, PromptFallback: fb})
}

func runLint(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		path := flags.String("bank", "", "Question bank file")
		mode := flags.String("mode", "strict", "Parse mode")
		fallback := flags.String("prompt-fallback", "none", "Prompt fallback for blocks without Q:")
		show := flags.Bool("show", false, "Print the parsed questions")
		noColor := flags.Bool("no-color", false, "Disable colors")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *path == "" {
			fmt.Fprintln(stderr, "--bank is required")
			return ExitUsage
		}

		b, err := loadBank(*path, *mode, *fallback)
		if err != nil {
			fmt.Fprintf(stderr, "Lint failed:\n%v\n", err)
			return ExitError
		}

		if *show {
			for _, q := range b.Questions {
				fmt.Fprintln(stdout, bold(fmt.Sprintf("%d. %s", q.Ordinal, q.Prompt), *noColor))
				for i, o := range q.Options {
					line := fmt.Sprintf("   %d) %s", i+1, o.Text)
					if o.IsCorrect {
						line = stylize(line+"  ✓", *noColor, colorOK)
					}
					fmt.Fprintln(stdout, line)
				}
			}
		}
		for _, w := range b.Warnings {
			color := colorWarn
			if w.Dropped {
				color = colorError
			}
			fmt.Fprintln(stdout, stylize(fmt.Sprintf("block %d: %s: %s", w.Block, w.Kind, w.Message), *noColor, color))
		}
		summary := fmt.Sprintf("%d questions, %d warnings", b.Len(), len(b.Warnings))
		if b.Empty() {
			fmt.Fprintln(stdout, stylize(summary+" (empty bank)", *noColor, colorError))
			return ExitError
		}
		fmt.Fprintln(stdout, stylize(summary, *noColor, colorMuted))
		return ExitOK
	}
}
