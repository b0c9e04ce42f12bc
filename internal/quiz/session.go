package quiz

import (
	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

const DefaultQuestionsPerPage = 5

// Paging splits a bank into fixed-size pages.
type Paging struct {
	PerPage int
}

// PerPageOrDefault is PerPage, or DefaultQuestionsPerPage when unset.
func (p Paging) PerPageOrDefault() int {
	if p.PerPage <= 0 {
		return DefaultQuestionsPerPage
	}
	return p.PerPage
}

// Pages is ceil(total/per); an empty bank still has one (empty) page.
func (p Paging) Pages(total int) int {
	if total <= 0 {
		return 1
	}
	per := p.PerPageOrDefault()
	return (total + per - 1) / per
}

// Range returns the [start,end) slice bounds of page within total questions.
func (p Paging) Range(page, total int) (start, end int) {
	per := p.PerPageOrDefault()
	start = page * per
	if start > total {
		start = total
	}
	end = start + per
	if end > total {
		end = total
	}
	return start, end
}

func (p Paging) PageQuestions(questions []bank.Question, page int) []bank.Question {
	start, end := p.Range(page, len(questions))
	return questions[start:end]
}

func (p Paging) clamp(page, total int) int {
	if page < 0 {
		return 0
	}
	if last := p.Pages(total) - 1; page > last {
		return last
	}
	return page
}

// WithPageAnswers replaces the answers of the questions on the session's
// current page with sel. Questions on the page that are absent from sel are
// recorded as visited with no selection; other pages are left untouched.
func (s Session) WithPageAnswers(questions []bank.Question, p Paging, sel grading.AnswerSet) (Session, error) {
	if s.Status == StatusSubmitted {
		return s, ErrAlreadySubmitted
	}
	next := s
	next.Answers = s.Answers.Clone()
	for _, q := range p.PageQuestions(questions, s.Page) {
		next.Answers[q.Ordinal] = append([]int{}, sel[q.Ordinal]...)
	}
	return next, nil
}

// Navigate moves delta pages, clamped to the first and last page.
func (s Session) Navigate(delta int, total int, p Paging) (Session, error) {
	if s.Status == StatusSubmitted {
		return s, ErrAlreadySubmitted
	}
	next := s
	next.Page = p.clamp(s.Page+delta, total)
	return next, nil
}

// IsLastPage reports whether the submit control belongs on the current page.
func (s Session) IsLastPage(total int, p Paging) bool {
	return s.Page >= p.Pages(total)-1
}
