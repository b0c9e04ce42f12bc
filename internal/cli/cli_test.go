package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/export"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

const bankText = `Q: 2+2?
A: 3
A: 4*
---
Q: Primes?
A: 2*
A: 4
A: 5*
---
A: orphan*`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunUsage(t *testing.T) {
	var out, errb bytes.Buffer
	if code := Run(nil, &out, &errb); code != ExitUsage {
		t.Fatalf("no args exit = %d", code)
	}
	if !strings.Contains(out.String(), "lint") || !strings.Contains(out.String(), "hash-password") {
		t.Fatalf("usage = %q", out.String())
	}
	out.Reset()
	if code := Run([]string{"bogus"}, &out, &errb); code != ExitUsage || !strings.Contains(errb.String(), "Unknown command: bogus") {
		t.Fatalf("unknown command exit = %d stderr %q", code, errb.String())
	}
	out.Reset()
	if code := Run([]string{"lint", "--help"}, &out, &errb); code != ExitOK || !strings.Contains(out.String(), "quizctl lint") {
		t.Fatalf("lint help = %d %q", code, out.String())
	}
}

func TestLint(t *testing.T) {
	p := writeFile(t, "bank.txt", bankText)
	var out, errb bytes.Buffer
	code := Run([]string{"lint", "--bank", p, "--show", "--no-color"}, &out, &errb)
	if code != ExitOK {
		t.Fatalf("exit = %d stderr %q", code, errb.String())
	}
	s := out.String()
	for _, want := range []string{"1. 2+2?", "2) 4  ✓", "block 3: missing_prompt", "2 questions, 1 warnings"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestLintEmptyBankFails(t *testing.T) {
	p := writeFile(t, "bank.txt", "\n---\n")
	var out, errb bytes.Buffer
	if code := Run([]string{"lint", "--bank", p, "--no-color"}, &out, &errb); code != ExitError {
		t.Fatalf("exit = %d", code)
	}
}

func TestGrade(t *testing.T) {
	p := writeFile(t, "bank.txt", bankText)
	var out, errb bytes.Buffer
	code := Run([]string{"grade", "--bank", p, "--transcript", "(1:2, 2:X)", "--no-color"}, &out, &errb)
	if code != ExitOK {
		t.Fatalf("exit = %d stderr %q", code, errb.String())
	}
	if !strings.Contains(out.String(), "Score: 1/2") || !strings.Contains(out.String(), "Incomplete: answered 1 of 2") {
		t.Fatalf("output = %q", out.String())
	}

	errb.Reset()
	if code := Run([]string{"grade", "--bank", p, "--transcript", "1:2"}, &out, &errb); code != ExitError {
		t.Fatalf("bad transcript exit = %d", code)
	}
	if code := Run([]string{"grade", "--bank", p}, &out, &errb); code != ExitUsage {
		t.Fatalf("missing transcript exit = %d", code)
	}
}

func TestRosterCommand(t *testing.T) {
	p := writeFile(t, "roster.txt", "S1, Ada Lovelace\nS2, Hopper, Grace\n")
	var out, errb bytes.Buffer
	if code := Run([]string{"roster", "--file", p, "--no-color"}, &out, &errb); code != ExitOK {
		t.Fatalf("exit = %d stderr %q", code, errb.String())
	}
	if !strings.Contains(out.String(), "Hopper, Grace") || !strings.Contains(out.String(), "2 students") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "quiz.db") + "?_pragma=busy_timeout(5000)"
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	st := submission.NewSQLStore(dbh, db.DriverSQLite.DriverName())
	if err := st.Create(ctx, submission.Record{
		ID: "r1", SessionID: "s1", StudentID: "S1",
		Payload:   submission.Payload{StudentName: "Ada", StudentID: "S1", Score: 1, TotalQuestions: 2, AllAnswers: "(1:2, 2:X)"},
		CreatedAt: time.Unix(1_700_000_000, 0),
	}); err != nil {
		t.Fatal(err)
	}
	dbh.Close()

	outPath := filepath.Join(dir, "out.xlsx")
	var out, errb bytes.Buffer
	if code := Run([]string{"export", "--db-driver", "sqlite", "--dsn", dsn, "--out", outPath}, &out, &errb); code != ExitOK {
		t.Fatalf("exit = %d stderr %q", code, errb.String())
	}
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(export.SheetName)
	if len(rows) != 2 || rows[1][0] != "S1" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestHashPassword(t *testing.T) {
	var out, errb bytes.Buffer
	if code := Run([]string{"hash-password", "--password", "pw", "--cost", "4"}, &out, &errb); code != ExitOK {
		t.Fatalf("exit = %d", code)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out.String())), []byte("pw")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}
