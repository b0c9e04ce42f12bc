package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogMode  string

	DBDriver string
	DBDSN    string

	BlobBasePath string

	Title            string
	BankFile         string
	RosterFile       string
	QuizFile         string // YAML overlay, see QuizFile
	QuestionsPerPage int
	ParseMode        string
	PromptFallback   string
	RejectOutOfRange bool

	// Results endpoint; empty keeps submissions local.
	SubmitURL          string
	SubmitTimeout      time.Duration
	SubmitTokenURL     string
	SubmitClientID     string
	SubmitClientSecret string
	RetryInterval      time.Duration
	MaxRetries         int

	RedisAddr string // enables the redis submission locker

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		LogMode:  envOr("LOG_MODE", string(mode)),

		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		Title:            envOr("QUIZ_TITLE", "Quiz"),
		BankFile:         envOr("BANK_FILE", "questions.txt"),
		RosterFile:       envOr("ROSTER_FILE", ""),
		QuizFile:         envOr("QUIZ_FILE", ""),
		QuestionsPerPage: envInt("QUESTIONS_PER_PAGE", 5),
		ParseMode:        envOr("PARSE_MODE", "strict"),
		PromptFallback:   envOr("PROMPT_FALLBACK", "none"),
		RejectOutOfRange: envBool("REJECT_OUT_OF_RANGE", false),

		SubmitURL:          os.Getenv("SUBMIT_URL"),
		SubmitTimeout:      envDuration("SUBMIT_TIMEOUT", 15*time.Second),
		SubmitTokenURL:     os.Getenv("SUBMIT_TOKEN_URL"),
		SubmitClientID:     os.Getenv("SUBMIT_CLIENT_ID"),
		SubmitClientSecret: os.Getenv("SUBMIT_CLIENT_SECRET"),
		RetryInterval:      envDuration("RETRY_INTERVAL", time.Minute),
		MaxRetries:         envInt("MAX_RETRIES", 10),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

// Load reads .env files (missing ones are fine), the environment and then the
// YAML quiz file if QUIZ_FILE is set.
func Load(envFiles ...string) (Config, error) {
	if err := LoadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}
	cfg := FromEnv()
	if cfg.QuizFile == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(cfg.QuizFile)
	if err != nil {
		return Config{}, fmt.Errorf("read quiz file: %w", err)
	}
	qf, err := ParseQuizFile(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", cfg.QuizFile, err)
	}
	qf.Apply(&cfg)
	return cfg, nil
}

// LoadDotEnv does not override variables already set in the process.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// BankOptions converts the parse settings; unknown values are an error.
func (c Config) BankOptions() (bank.Options, error) {
	mode, err := bank.ParseMode(c.ParseMode)
	if err != nil {
		return bank.Options{}, err
	}
	fb, err := bank.ParsePromptFallback(c.PromptFallback)
	if err != nil {
		return bank.Options{}, err
	}
	return bank.Options{Mode: mode, PromptFallback: fb}, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts Go durations ("30s") or bare seconds ("30").
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
