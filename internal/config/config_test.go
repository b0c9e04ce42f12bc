package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "QUESTIONS_PER_PAGE", "SUBMIT_TIMEOUT", "CORS_ORIGINS", "PARSE_MODE"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.QuestionsPerPage != 5 {
		t.Fatalf("defaults = %+v", c)
	}
	if c.SubmitTimeout != 15*time.Second || len(c.CORSOrigins) != 2 {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("QUESTIONS_PER_PAGE", "10")
	t.Setenv("SUBMIT_TIMEOUT", "30")
	t.Setenv("RETRY_INTERVAL", "2m")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	c := FromEnv()
	if c.Mode != ModeOnline || c.LogMode != "online" || c.QuestionsPerPage != 10 {
		t.Fatalf("cfg = %+v", c)
	}
	if c.SubmitTimeout != 30*time.Second || c.RetryInterval != 2*time.Minute {
		t.Fatalf("durations = %v %v", c.SubmitTimeout, c.RetryInterval)
	}
	if strings.Join(c.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("origins = %v", c.CORSOrigins)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "no")
	if envBool("FLAG", true) {
		t.Fatal("no should be false")
	}
	t.Setenv("FLAG", "maybe")
	if !envBool("FLAG", true) {
		t.Fatal("unknown should fall back to default")
	}
}

func TestParseQuizFileStrict(t *testing.T) {
	qf, err := ParseQuizFile([]byte("title: Week 3\nbank_file: w3.txt\nquestions_per_page: 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	if qf.Title != "Week 3" || qf.QuestionsPerPage != 4 {
		t.Fatalf("qf = %+v", qf)
	}
	if _, err := ParseQuizFile([]byte("title: x\nbank: y\n")); err == nil {
		t.Fatal("unknown field accepted")
	}
	if _, err := ParseQuizFile([]byte("title: a\n---\ntitle: b\n")); err == nil {
		t.Fatal("multiple documents accepted")
	}
	if qf, err := ParseQuizFile(nil); err != nil || qf != (QuizFile{}) {
		t.Fatalf("empty file = %+v, %v", qf, err)
	}
}

func TestLoadAppliesQuizFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	quiz := filepath.Join(dir, "quiz.yaml")
	if err := os.WriteFile(quiz, []byte("title: Midterm\nparse_mode: lenient\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("QUIZ_FILE="+quiz+"\nBANK_FILE=from-dotenv.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUIZ_FILE", "")
	os.Unsetenv("QUIZ_FILE")
	t.Setenv("BANK_FILE", "")
	os.Unsetenv("BANK_FILE")

	c, err := Load(env, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Title != "Midterm" || c.BankFile != "from-dotenv.txt" || c.ParseMode != "lenient" {
		t.Fatalf("cfg = %+v", c)
	}
	opts, err := c.BankOptions()
	if err != nil || opts.Mode != bank.Lenient {
		t.Fatalf("bank options = %+v, %v", opts, err)
	}
}

func TestBankOptionsRejectsUnknown(t *testing.T) {
	c := Config{ParseMode: "fuzzy", PromptFallback: "none"}
	if _, err := c.BankOptions(); err == nil {
		t.Fatal("expected error")
	}
}
