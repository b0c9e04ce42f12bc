package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

func runGrade(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		path := flags.String("bank", "", "Question bank file")
		transcript := flags.String("transcript", "", "Answer transcript, e.g. \"(1:1|3, 2:X)\"")
		mode := flags.String("mode", "strict", "Parse mode")
		strict := flags.Bool("reject-out-of-range", false, "Fail on selections past the last option")
		noColor := flags.Bool("no-color", false, "Disable colors")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *path == "" || *transcript == "" {
			fmt.Fprintln(stderr, "--bank and --transcript are required")
			return ExitUsage
		}

		b, err := loadBank(*path, *mode, "none")
		if err != nil {
			fmt.Fprintf(stderr, "Grade failed:\n%v\n", err)
			return ExitError
		}
		answers, err := grading.ParseTranscript(*transcript)
		if err != nil {
			fmt.Fprintf(stderr, "Grade failed:\n%v\n", err)
			return ExitError
		}
		res, err := grading.NewEngine(grading.WithRejectOutOfRange(*strict)).Score(b.Questions, answers)
		if err != nil {
			fmt.Fprintf(stderr, "Grade failed:\n%v\n", err)
			return ExitError
		}

		for _, it := range res.Items {
			var mark string
			switch {
			case !it.Scoreable:
				mark = stylize("-", *noColor, colorMuted)
			case it.Correct:
				mark = stylize("✓", *noColor, colorOK)
			case !it.Answered:
				mark = stylize("?", *noColor, colorWarn)
			default:
				mark = stylize("✗", *noColor, colorError)
			}
			fmt.Fprintf(stdout, "%s %d. %v\n", mark, it.Ordinal, it.Selected)
		}
		fmt.Fprintln(stdout, bold(fmt.Sprintf("Score: %d/%d", res.Score, res.Total), *noColor))
		if res.Incomplete() {
			fmt.Fprintln(stdout, stylize(fmt.Sprintf("Incomplete: answered %d of %d", res.Answered, res.Scoreable), *noColor, colorWarn))
		}
		return ExitOK
	}
}
