package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/roster"
)

func loadRoster(path, sheet string) (*roster.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return roster.ImportXLSX(f, sheet)
	case ".csv":
		return roster.ImportCSV(f)
	default:
		return roster.ParseReader(f)
	}
}

func runRoster(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		path := flags.String("file", "", "Roster file")
		sheet := flags.String("sheet", "", "Sheet name for xlsx rosters (default: first sheet)")
		noColor := flags.Bool("no-color", false, "Disable colors")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *path == "" {
			fmt.Fprintln(stderr, "--file is required")
			return ExitUsage
		}
		r, err := loadRoster(*path, *sheet)
		if err != nil {
			fmt.Fprintf(stderr, "Roster failed:\n%v\n", err)
			return ExitError
		}
		for _, s := range r.Students() {
			fmt.Fprintf(stdout, "%-12s %s\n", s.Code, s.Name)
		}
		fmt.Fprintln(stdout, stylize(fmt.Sprintf("%d students", r.Len()), *noColor, colorMuted))
		return ExitOK
	}
}
