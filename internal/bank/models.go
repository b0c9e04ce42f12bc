package bank

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is one retained block of a bank. Ordinal is 1-based and counts
// retained blocks only.
type Question struct {
	Ordinal int      `json:"ordinal"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// CorrectPositions returns the 1-based positions of the correct options, ascending.
func (q Question) CorrectPositions() []int {
	out := make([]int, 0, len(q.Options))
	for i, o := range q.Options {
		if o.IsCorrect {
			out = append(out, i+1)
		}
	}
	return out
}

// Scoreable reports whether at least one option is marked correct.
func (q Question) Scoreable() bool {
	for _, o := range q.Options {
		if o.IsCorrect {
			return true
		}
	}
	return false
}

// Public strips correctness markers for serving to students.
func (q Question) Public() PublicQuestion {
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = o.Text
	}
	return PublicQuestion{Ordinal: q.Ordinal, Prompt: q.Prompt, Options: opts}
}

type PublicQuestion struct {
	Ordinal int      `json:"ordinal"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type WarningKind string

const (
	WarnMissingPrompt   WarningKind = "missing_prompt"
	WarnNoOptions       WarningKind = "no_options"
	WarnNoCorrectOption WarningKind = "no_correct_option"
)

// Warning describes a malformed block. Block is the 1-based index of the
// block in the source text, counting every non-empty block.
type Warning struct {
	Block   int         `json:"block"`
	Kind    WarningKind `json:"kind"`
	Dropped bool        `json:"dropped"`
	Message string      `json:"message"`
}

type Bank struct {
	Questions []Question `json:"questions"`
	Warnings  []Warning  `json:"warnings,omitempty"`
}

// Empty is the EmptyBank condition: nothing survived parsing.
func (b Bank) Empty() bool { return len(b.Questions) == 0 }

func (b Bank) Len() int { return len(b.Questions) }

func (b Bank) Public() []PublicQuestion {
	out := make([]PublicQuestion, len(b.Questions))
	for i, q := range b.Questions {
		out[i] = q.Public()
	}
	return out
}
