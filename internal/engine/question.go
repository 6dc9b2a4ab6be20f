package engine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// QuestionsPerRound is fixed: every round is a 10-question run.
	QuestionsPerRound  = 10
	OptionsPerQuestion = 4
)

var ErrBadQuestionSet = errors.New("malformed question set")

type Question struct {
	Prompt  string   `json:"q"`
	Options []string `json:"options"`
	// Answer stays server-side; scoring compares against it.
	Answer string `json:"-"`
}

// QuestionSet is the round's shared, read-only sequence of questions.
type QuestionSet []Question

// Validate rejects anything that doesn't look like a complete round:
// wrong question count, wrong option count, blank prompt or answer, or a
// correct answer that isn't one of the options.
func (qs QuestionSet) Validate() error {
	if len(qs) != QuestionsPerRound {
		return fmt.Errorf("%w: got %d questions, want %d", ErrBadQuestionSet, len(qs), QuestionsPerRound)
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has empty prompt", ErrBadQuestionSet, i)
		}
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, want %d", ErrBadQuestionSet, i, len(q.Options), OptionsPerQuestion)
		}
		if strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("%w: question %d has empty answer", ErrBadQuestionSet, i)
		}
		if !containsAnswer(q.Options, q.Answer) {
			return fmt.Errorf("%w: question %d answer not among options", ErrBadQuestionSet, i)
		}
	}
	return nil
}

func containsAnswer(options []string, answer string) bool {
	for _, opt := range options {
		if MatchAnswer(opt, answer) {
			return true
		}
	}
	return false
}

// MatchAnswer compares two answer strings case-insensitively with
// surrounding whitespace trimmed.
func MatchAnswer(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
