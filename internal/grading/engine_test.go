package grading

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

func q(ordinal int, marks ...bool) bank.Question {
	opts := make([]bank.Option, len(marks))
	for i, m := range marks {
		opts[i] = bank.Option{Text: string(rune('a' + i)), IsCorrect: m}
	}
	return bank.Question{Ordinal: ordinal, Prompt: "q", Options: opts}
}

func TestScoreStrictAllOrNothing(t *testing.T) {
	questions := []bank.Question{q(1, true, false, true)}
	tests := []struct {
		name     string
		selected []int
		want     int
	}{
		{name: "subset", selected: []int{1}, want: 0},
		{name: "exact", selected: []int{1, 3}, want: 1},
		{name: "superset", selected: []int{1, 2, 3}, want: 0},
		{name: "reversed order", selected: []int{3, 1}, want: 1},
		{name: "duplicates", selected: []int{3, 1, 3}, want: 1},
		{name: "unanswered", selected: nil, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(questions, AnswerSet{1: tc.selected})
			if res.Score != tc.want {
				t.Fatalf("score = %d, want %d", res.Score, tc.want)
			}
		})
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	questions := []bank.Question{q(1, true, true, false)}
	a := Score(questions, AnswerSet{1: {2, 1}})
	b := Score(questions, AnswerSet{1: {1, 2}})
	if a.Score != 1 || b.Score != 1 || a.Transcript != b.Transcript {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestScoreEndToEnd(t *testing.T) {
	b := bank.Parse("Q: 2+2?\nA: 3\nA: 4*\n---\nQ: Pick primes\nA: 2*\nA: 4\nA: 5*\n", bank.DefaultOptions())
	res := Score(b.Questions, AnswerSet{1: {2}, 2: {1, 3}})
	if res.Score != 2 {
		t.Fatalf("score = %d, want 2", res.Score)
	}
	if res.Transcript != "(1:2, 2:1|3)" {
		t.Fatalf("transcript = %q", res.Transcript)
	}
	if res.Total != 2 || res.Incomplete() {
		t.Fatalf("unexpected totals %+v", res)
	}
}

func TestScoreUnscoreableQuestion(t *testing.T) {
	questions := []bank.Question{q(1, false, false), q(2, true, false)}
	res := Score(questions, AnswerSet{1: {1}, 2: {1}})
	if res.Score != 1 {
		t.Fatalf("score = %d, want 1", res.Score)
	}
	if res.Scoreable != 1 || res.Answered != 1 || res.Total != 2 {
		t.Fatalf("unexpected tallies %+v", res)
	}
	if res.Items[0].Scoreable || res.Items[0].Correct {
		t.Fatalf("unscoreable item graded: %+v", res.Items[0])
	}
	// an empty selection on an unscoreable question is still not "correct"
	res = Score(questions[:1], AnswerSet{})
	if res.Score != 0 || res.Incomplete() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScoreIgnoresOutOfRangeByDefault(t *testing.T) {
	questions := []bank.Question{q(1, true, false)}
	res := Score(questions, AnswerSet{1: {1, 7, 0, -2}})
	if res.Score != 1 {
		t.Fatalf("score = %d, want 1", res.Score)
	}
	if !reflect.DeepEqual(res.Items[0].Selected, []int{1}) {
		t.Fatalf("selected = %v", res.Items[0].Selected)
	}
}

func TestScoreRejectOutOfRange(t *testing.T) {
	e := NewEngine(WithRejectOutOfRange(true))
	if _, err := e.Score([]bank.Question{q(1, true, false)}, AnswerSet{1: {3}}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out-of-range error")
	}
	if _, err := e.Score([]bank.Question{q(1, true, false)}, AnswerSet{1: {2}}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCompletion(t *testing.T) {
	questions := []bank.Question{q(1, true), q(2, true, false), q(3, false, false)}
	answered, total := Completion(questions, AnswerSet{1: {1}, 2: {}, 3: {1}})
	if answered != 1 || total != 2 {
		t.Fatalf("completion = %d/%d, want 1/2", answered, total)
	}
	res := Score(questions, AnswerSet{1: {1}})
	if !res.Incomplete() {
		t.Fatalf("expected incomplete result")
	}
}

func TestAnswerSetClone(t *testing.T) {
	a := AnswerSet{1: {1, 2}}
	c := a.Clone()
	c[1][0] = 9
	if a[1][0] != 1 {
		t.Fatalf("clone shares backing arrays")
	}
}
