package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/export"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		out := flags.String("out", "results.xlsx", "Output workbook")
		driver := flags.String("db-driver", envOr("DB_DRIVER", "sqlite"), "sqlite or postgres")
		dsn := flags.String("dsn", os.Getenv("DB_DSN"), "Database DSN")
		status := flags.String("status", "", "Only records with this delivery status")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d := db.Driver(*driver)
		dbh, err := db.Open(ctx, d, *dsn)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed:\n%v\n", err)
			return ExitError
		}
		defer dbh.Close()

		recs, err := submission.NewSQLStore(dbh, d.DriverName()).List(ctx, submission.ListOpts{Status: submission.Status(*status)})
		if err != nil {
			fmt.Fprintf(stderr, "Export failed:\n%v\n", err)
			return ExitError
		}
		var buf bytes.Buffer
		if err := export.WriteSubmissionsXLSX(&buf, recs); err != nil {
			fmt.Fprintf(stderr, "Export failed:\n%v\n", err)
			return ExitError
		}
		if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
			fmt.Fprintf(stderr, "Export failed:\n%v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %d submissions to %s\n", len(recs), *out)
		return ExitOK
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
