package grading

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

// AnswerSet maps a question ordinal to the 1-based option positions selected
// for it. A missing or empty entry means unanswered.
type AnswerSet map[int][]int

// Clone returns a deep copy so callers can hand out answers without sharing slices.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// ItemResult is the outcome for a single question.
type ItemResult struct {
	Ordinal   int   `json:"ordinal"`
	Selected  []int `json:"selected"`
	Answered  bool  `json:"answered"`
	Scoreable bool  `json:"scoreable"`
	Correct   bool  `json:"correct"`
}

// Result is produced once per submission and not mutated afterwards.
type Result struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Scoreable  int          `json:"scoreable"`
	Answered   int          `json:"answered"`
	Transcript string       `json:"transcript"`
	Items      []ItemResult `json:"items"`
}

// Incomplete reports whether some scoreable question was left unanswered.
func (r Result) Incomplete() bool { return r.Answered < r.Scoreable }

var ErrOutOfRange = errors.New("selection out of range")

// Engine options

type Option func(*config)

type config struct {
	RejectOutOfRange bool // error instead of ignoring selections past the last option
}

func WithRejectOutOfRange(b bool) Option { return func(c *config) { c.RejectOutOfRange = b } }

type Engine struct {
	cfg config
}

func NewEngine(opts ...Option) *Engine {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	return &Engine{cfg: cfg}
}

var defaultEngine = NewEngine()

// Score grades answers with the default engine, which ignores out-of-range selections.
func Score(questions []bank.Question, answers AnswerSet) Result {
	res, _ := defaultEngine.Score(questions, answers)
	return res
}

// Score computes strict all-or-nothing credit: a question counts only when the
// selected set equals the correct set. Questions without a correct option
// never count and are left out of the Scoreable and Answered tallies.
func (e *Engine) Score(questions []bank.Question, answers AnswerSet) (Result, error) {
	res := Result{Total: len(questions), Items: make([]ItemResult, 0, len(questions))}
	for _, q := range questions {
		sel, err := e.selection(q, answers[q.Ordinal])
		if err != nil {
			return Result{}, err
		}
		item := ItemResult{
			Ordinal:   q.Ordinal,
			Selected:  sel,
			Answered:  len(sel) > 0,
			Scoreable: q.Scoreable(),
		}
		if item.Scoreable {
			res.Scoreable++
			if item.Answered {
				res.Answered++
				item.Correct = setEqual(toSet(q.CorrectPositions()), toSet(sel))
			}
		}
		if item.Correct {
			res.Score++
		}
		res.Items = append(res.Items, item)
	}
	res.Transcript = encodeItems(res.Items)
	return res, nil
}

// Completion counts answered scoreable questions against all scoreable ones.
func Completion(questions []bank.Question, answers AnswerSet) (answered, total int) {
	for _, q := range questions {
		if !q.Scoreable() {
			continue
		}
		total++
		if len(normalize(answers[q.Ordinal], len(q.Options))) > 0 {
			answered++
		}
	}
	return answered, total
}

func (e *Engine) selection(q bank.Question, raw []int) ([]int, error) {
	if e.cfg.RejectOutOfRange {
		for _, p := range raw {
			if p < 1 || p > len(q.Options) {
				return nil, fmt.Errorf("%w: question %d option %d not in 1..%d", ErrOutOfRange, q.Ordinal, p, len(q.Options))
			}
		}
	}
	return normalize(raw, len(q.Options)), nil
}

// normalize drops out-of-range positions and duplicates and sorts ascending.
func normalize(raw []int, max int) []int {
	seen := make(map[int]struct{}, len(raw))
	out := make([]int, 0, len(raw))
	for _, p := range raw {
		if p < 1 || p > max {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// helpers

func toSet(arr []int) map[int]struct{} {
	m := make(map[int]struct{}, len(arr))
	for _, v := range arr {
		m[v] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
