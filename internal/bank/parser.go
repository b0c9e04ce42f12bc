package bank

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	promptPrefix = "Q:"
	optionPrefix = "A:"
	correctMark  = "*"
)

// a line of three or more hyphens, nothing else but blanks
var delimiter = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t\r]*$`)

type Mode string

const (
	// Strict drops blocks without a correct option.
	Strict Mode = "strict"
	// Lenient keeps them; they are unscoreable and only produce a warning.
	Lenient Mode = "lenient"
)

type PromptFallback string

const (
	FallbackNone        PromptFallback = "none"
	FallbackFirstLine   PromptFallback = "first_line"
	FallbackPlaceholder PromptFallback = "placeholder"
)

type Options struct {
	Mode           Mode
	PromptFallback PromptFallback
}

func DefaultOptions() Options {
	return Options{Mode: Strict, PromptFallback: FallbackNone}
}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Strict:
		return Strict, nil
	case Lenient:
		return Lenient, nil
	}
	return "", fmt.Errorf("unknown parse mode %q", s)
}

func ParsePromptFallback(s string) (PromptFallback, error) {
	switch PromptFallback(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackNone:
		return FallbackNone, nil
	case FallbackFirstLine:
		return FallbackFirstLine, nil
	case FallbackPlaceholder:
		return FallbackPlaceholder, nil
	}
	return "", fmt.Errorf("unknown prompt fallback %q", s)
}

// Parse converts raw bank text into questions. It never fails: malformed
// blocks are dropped or kept according to opts and reported as warnings.
func Parse(raw string, opts Options) Bank {
	if opts.Mode == "" {
		opts.Mode = Strict
	}
	if opts.PromptFallback == "" {
		opts.PromptFallback = FallbackNone
	}

	b := Bank{Questions: []Question{}}
	blockNo := 0
	for _, block := range delimiter.Split(raw, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		blockNo++
		q, warns, keep := parseBlock(block, blockNo, opts)
		b.Warnings = append(b.Warnings, warns...)
		if !keep {
			continue
		}
		q.Ordinal = len(b.Questions) + 1
		b.Questions = append(b.Questions, q)
	}
	return b
}

// ParseReader reads the whole source before parsing; read failure is the only error.
func ParseReader(r io.Reader, opts Options) (Bank, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return Bank{}, fmt.Errorf("read bank: %w", err)
	}
	return Parse(string(buf), opts), nil
}

func parseBlock(block string, blockNo int, opts Options) (Question, []Warning, bool) {
	lines := nonEmptyLines(block)

	var (
		q         Question
		hasPrompt bool
		firstText string
	)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, promptPrefix):
			if !hasPrompt {
				q.Prompt = strings.TrimSpace(strings.TrimPrefix(line, promptPrefix))
				hasPrompt = true
			}
		case strings.HasPrefix(line, optionPrefix):
			q.Options = append(q.Options, parseOption(line))
		default:
			if firstText == "" {
				firstText = line
			}
		}
	}

	var warns []Warning
	if !hasPrompt {
		switch opts.PromptFallback {
		case FallbackFirstLine:
			if firstText != "" {
				q.Prompt = firstText
			} else {
				q.Prompt = placeholder(blockNo)
			}
		case FallbackPlaceholder:
			q.Prompt = placeholder(blockNo)
		default:
			return Question{}, []Warning{{
				Block: blockNo, Kind: WarnMissingPrompt, Dropped: true,
				Message: "block has no Q: line",
			}}, false
		}
		warns = append(warns, Warning{
			Block: blockNo, Kind: WarnMissingPrompt,
			Message: fmt.Sprintf("block has no Q: line, using %q", q.Prompt),
		})
	}

	if len(q.Options) == 0 {
		return Question{}, append(warns, Warning{
			Block: blockNo, Kind: WarnNoOptions, Dropped: true,
			Message: "block has no A: lines",
		}), false
	}

	if !q.Scoreable() {
		drop := opts.Mode != Lenient
		warns = append(warns, Warning{
			Block: blockNo, Kind: WarnNoCorrectOption, Dropped: drop,
			Message: fmt.Sprintf("question %q has no option marked with *", q.Prompt),
		})
		if drop {
			return Question{}, warns, false
		}
	}
	return q, warns, true
}

func parseOption(line string) Option {
	text := strings.TrimSpace(strings.TrimPrefix(line, optionPrefix))
	if strings.HasSuffix(text, correctMark) {
		return Option{Text: strings.TrimSpace(strings.TrimSuffix(text, correctMark)), IsCorrect: true}
	}
	return Option{Text: text}
}

func nonEmptyLines(block string) []string {
	parts := strings.Split(block, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func placeholder(n int) string { return fmt.Sprintf("Question %d", n) }
