package cli

import (
	"flag"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
)

func runHashPassword(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		pw := flags.String("password", "", "Plain-text password")
		cost := flags.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *pw == "" {
			fmt.Fprintln(stderr, "--password is required")
			return ExitUsage
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*pw), *cost)
		if err != nil {
			fmt.Fprintf(stderr, "hash failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(stdout, string(h))
		return ExitOK
	}
}
