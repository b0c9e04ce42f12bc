package grading

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

const (
	unansweredCode = "X"
	segmentSep     = ", "
	positionSep    = "|"
)

// Transcript encodes the selections of every question in bank order, e.g.
// "(1:1|3, 2:X)". Positions are deduplicated and sorted; X marks no selection.
func Transcript(questions []bank.Question, answers AnswerSet) string {
	items := make([]ItemResult, len(questions))
	for i, q := range questions {
		items[i] = ItemResult{Ordinal: q.Ordinal, Selected: normalize(answers[q.Ordinal], len(q.Options))}
	}
	return encodeItems(items)
}

func encodeItems(items []ItemResult) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, it := range items {
		if i > 0 {
			sb.WriteString(segmentSep)
		}
		sb.WriteString(strconv.Itoa(it.Ordinal))
		sb.WriteByte(':')
		if len(it.Selected) == 0 {
			sb.WriteString(unansweredCode)
			continue
		}
		for j, p := range it.Selected {
			if j > 0 {
				sb.WriteString(positionSep)
			}
			sb.WriteString(strconv.Itoa(p))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

var ErrBadTranscript = errors.New("malformed transcript")

// ParseTranscript inverts Transcript. Unanswered questions map to an empty slice.
func ParseTranscript(s string) (AnswerSet, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("%w: missing parentheses", ErrBadTranscript)
	}
	body := s[1 : len(s)-1]
	out := AnswerSet{}
	if body == "" {
		return out, nil
	}
	for _, seg := range strings.Split(body, segmentSep) {
		ordStr, code, ok := strings.Cut(seg, ":")
		if !ok {
			return nil, fmt.Errorf("%w: segment %q", ErrBadTranscript, seg)
		}
		ord, err := strconv.Atoi(ordStr)
		if err != nil || ord < 1 {
			return nil, fmt.Errorf("%w: ordinal %q", ErrBadTranscript, ordStr)
		}
		if _, dup := out[ord]; dup {
			return nil, fmt.Errorf("%w: duplicate ordinal %d", ErrBadTranscript, ord)
		}
		if code == unansweredCode {
			out[ord] = []int{}
			continue
		}
		prev := 0
		sel := []int{}
		for _, p := range strings.Split(code, positionSep) {
			n, err := strconv.Atoi(p)
			if err != nil || n <= prev {
				return nil, fmt.Errorf("%w: positions %q", ErrBadTranscript, code)
			}
			sel = append(sel, n)
			prev = n
		}
		out[ord] = sel
	}
	return out, nil
}
