package form

import (
	"errors"
	"fmt"
)

var (
	ErrLastQuestion    = errors.New("a filtered circle needs at least one question")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotFiltered     = errors.New("circle is not filtered")
	ErrInvalidCorrect  = errors.New("correct answer index out of range")
)

// Field names reported by ValidationError.
const (
	FieldName     = "name"
	FieldQuestion = "question"
	FieldAnswer   = "answer"
)

// ValidationError describes the first invalid field found in a circle draft.
// QuestionIndex and AnswerIndex are 0-based and -1 when not applicable.
type ValidationError struct {
	Field         string
	QuestionIndex int
	AnswerIndex   int
	Message       string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func nameRequired() *ValidationError {
	return &ValidationError{
		Field:         FieldName,
		QuestionIndex: -1,
		AnswerIndex:   -1,
		Message:       "Circle name is required",
	}
}

func questionRequired(qi int) *ValidationError {
	return &ValidationError{
		Field:         FieldQuestion,
		QuestionIndex: qi,
		AnswerIndex:   -1,
		Message:       fmt.Sprintf("Question %d is required", qi+1),
	}
}

func answerRequired(qi, ai int) *ValidationError {
	return &ValidationError{
		Field:         FieldAnswer,
		QuestionIndex: qi,
		AnswerIndex:   ai,
		Message:       fmt.Sprintf("Question %d, Answer %d is required", qi+1, ai+1),
	}
}
