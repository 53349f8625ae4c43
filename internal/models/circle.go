package models

import (
	"errors"
	"fmt"
	"strings"
)

// AnswersPerQuestion is the fixed number of options on every join question.
const AnswersPerQuestion = 4

// Visibility controls whether a circle is listed publicly.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ErrInvalidCircle is wrapped by every invariant violation reported by CheckInvariants.
var ErrInvalidCircle = errors.New("invalid circle")

// ParseVisibility converts a raw string into a Visibility.
// An empty string yields the public default.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("unknown visibility %q", s)
	}
}

// Circle is a community group managed through the dashboard.
// It is persisted as a single row; JoinQuestions is stored as an embedded document.
type Circle struct {
	// ID is the unique identifier for the circle (UUID format), assigned by the store.
	ID string `json:"id"`

	// Name is the display name of the circle. Never blank once saved.
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description"`

	// Visibility is either public or private.
	Visibility Visibility `json:"visibility"`

	// IsFiltered is true when prospective members must answer JoinQuestions.
	IsFiltered bool `json:"is_filtered"`

	// BannerImage and IconImage hold an image URL or an inline data URI.
	BannerImage string `json:"banner_image"`
	IconImage   string `json:"icon_image"`

	// JoinQuestions is empty unless IsFiltered is set.
	JoinQuestions []Question `json:"join_questions"`

	// Server-managed metadata, only defaulted at creation.
	MemberCount int  `json:"member_count"`
	IsOfficial  bool `json:"is_official"`
	AutoJoin    bool `json:"auto_join"`

	// CreatedBy is the user ID of the creator.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt is the Unix timestamp when the circle was created. Immutable.
	CreatedAt int64 `json:"created_at"`
}

// Question is a multiple-choice join question.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Order    int      `json:"order"`
	Answers  []Answer `json:"answers"`
}

// Answer is one option of a Question.
type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionDraft is the editable state of a question inside the circle form.
// The correct option is an explicit index rather than a flag on each answer.
type QuestionDraft struct {
	ID            string                     `json:"id"`
	Question      string                     `json:"question"`
	Answers       [AnswersPerQuestion]string `json:"answers"`
	CorrectAnswer int                        `json:"correct_answer"`
}

// NewCircle returns a circle carrying the creation defaults for server-managed fields.
func NewCircle() Circle {
	return Circle{
		Visibility:    VisibilityPublic,
		JoinQuestions: []Question{},
		MemberCount:   1,
		IsOfficial:    false,
		AutoJoin:      false,
	}
}

// QuestionID returns the persisted identifier of the question at 0-based index qi.
func QuestionID(qi int) string {
	return fmt.Sprintf("q%d", qi+1)
}

// AnswerID returns the persisted identifier of answer ai of question qi.
func AnswerID(qi, ai int) string {
	return fmt.Sprintf("q%da%d", qi+1, ai+1)
}

// CorrectIndex returns the index of the first correct answer, or 0 when none is marked.
func (q Question) CorrectIndex() int {
	for i, a := range q.Answers {
		if a.IsCorrect {
			return i
		}
	}
	return 0
}

// CheckInvariants reports the first way c violates the stored-circle invariants:
// unfiltered circles carry no questions; filtered circles carry at least one
// question, each with exactly four non-empty answers and one correct answer;
// order values are dense and 1-based.
func (c *Circle) CheckInvariants() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCircle)
	}
	if _, err := ParseVisibility(string(c.Visibility)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCircle, err)
	}
	if !c.IsFiltered {
		if len(c.JoinQuestions) != 0 {
			return fmt.Errorf("%w: unfiltered circle has %d join questions", ErrInvalidCircle, len(c.JoinQuestions))
		}
		return nil
	}
	if len(c.JoinQuestions) == 0 {
		return fmt.Errorf("%w: filtered circle needs at least one join question", ErrInvalidCircle)
	}
	for qi, q := range c.JoinQuestions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d is blank", ErrInvalidCircle, qi+1)
		}
		if q.Order != qi+1 {
			return fmt.Errorf("%w: question %d has order %d", ErrInvalidCircle, qi+1, q.Order)
		}
		if len(q.Answers) != AnswersPerQuestion {
			return fmt.Errorf("%w: question %d has %d answers, want %d", ErrInvalidCircle, qi+1, len(q.Answers), AnswersPerQuestion)
		}
		correct := 0
		for ai, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" {
				return fmt.Errorf("%w: question %d, answer %d is blank", ErrInvalidCircle, qi+1, ai+1)
			}
			if a.Order != ai+1 {
				return fmt.Errorf("%w: question %d, answer %d has order %d", ErrInvalidCircle, qi+1, ai+1, a.Order)
			}
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d has %d correct answers", ErrInvalidCircle, qi+1, correct)
		}
	}
	return nil
}
