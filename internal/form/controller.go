// Package form holds the editable state of one circle being created or edited
// and turns it into a validated, save-ready record.
package form

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmynk/circles/internal/drafts"
	"github.com/mmynk/circles/internal/models"
)

// Controller owns the draft of a single circle. All mutation goes through its
// methods so the question list keeps its invariants: it is empty while the
// circle is unfiltered and holds at least one question while filtered.
type Controller struct {
	drafts *drafts.Store

	// editing is the circle loaded by Edit, nil while creating.
	editing *models.Circle

	name        string
	description string
	visibility  models.Visibility
	filtered    bool
	bannerImage string
	iconImage   string
	questions   []models.QuestionDraft
}

// NewController creates a controller holding a blank new-circle draft.
func NewController(store *drafts.Store) *Controller {
	c := &Controller{drafts: store}
	c.clear()
	return c
}

// blankQuestion returns a question with empty text and answers.
func blankQuestion(id string) models.QuestionDraft {
	return models.QuestionDraft{ID: id, CorrectAnswer: 0}
}

func (c *Controller) clear() {
	c.editing = nil
	c.name = ""
	c.description = ""
	c.visibility = models.VisibilityPublic
	c.filtered = false
	c.bannerImage = ""
	c.iconImage = ""
	c.questions = []models.QuestionDraft{}
}

// CircleID returns the ID of the circle being edited, or "" while creating.
func (c *Controller) CircleID() string {
	if c.editing == nil {
		return ""
	}
	return c.editing.ID
}

// IsEditing reports whether the draft belongs to an existing circle.
func (c *Controller) IsEditing() bool {
	return c.editing != nil
}

// DraftKey returns the draft slot for the circle held by the controller.
func (c *Controller) DraftKey() string {
	return drafts.Key(c.CircleID())
}

func (c *Controller) Name() string                  { return c.name }
func (c *Controller) Description() string           { return c.description }
func (c *Controller) Visibility() models.Visibility { return c.visibility }
func (c *Controller) IsFiltered() bool              { return c.filtered }
func (c *Controller) BannerImage() string           { return c.bannerImage }
func (c *Controller) IconImage() string             { return c.iconImage }

// Questions returns a copy of the current question list.
func (c *Controller) Questions() []models.QuestionDraft {
	out := make([]models.QuestionDraft, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Controller) SetName(name string)               { c.name = name }
func (c *Controller) SetDescription(description string) { c.description = description }
func (c *Controller) SetVisibility(v models.Visibility) { c.visibility = v }
func (c *Controller) SetBannerImage(image string)       { c.bannerImage = image }
func (c *Controller) SetIconImage(image string)         { c.iconImage = image }

// Edit loads an existing circle into the form. The form it replaces is
// abandoned, so its question draft is cleared first; the circle is loaded
// even when that fails.
func (c *Controller) Edit(ctx context.Context, circle models.Circle) error {
	// Drop the draft of the outgoing circle
	clearErr := c.drafts.Clear(ctx, c.DraftKey())

	c.clear()

	edited := circle
	edited.JoinQuestions = append([]models.Question(nil), circle.JoinQuestions...)
	c.editing = &edited

	c.name = circle.Name
	c.description = circle.Description
	c.visibility = circle.Visibility
	if c.visibility == "" {
		c.visibility = models.VisibilityPublic
	}
	c.filtered = circle.IsFiltered
	c.bannerImage = circle.BannerImage
	c.iconImage = circle.IconImage

	if !circle.IsFiltered {
		return clearErr
	}
	for i, q := range circle.JoinQuestions {
		d := models.QuestionDraft{
			ID:            q.ID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectIndex(),
		}
		if d.ID == "" {
			d.ID = strconv.Itoa(i + 1)
		}
		for ai := 0; ai < len(q.Answers) && ai < models.AnswersPerQuestion; ai++ {
			d.Answers[ai] = q.Answers[ai].Text
		}
		c.questions = append(c.questions, d)
	}
	if len(c.questions) == 0 {
		c.questions = append(c.questions, blankQuestion("1"))
	}
	return clearErr
}

// SetFiltered toggles whether the circle is gated by join questions.
//
// Turning filtering off stores the current questions in the draft slot before
// emptying the list. Turning it on restores that draft, or starts with one
// blank question when no draft exists. Setting the current value is a no-op.
func (c *Controller) SetFiltered(ctx context.Context, filtered bool) {
	if filtered == c.filtered {
		return
	}
	key := c.DraftKey()

	if !filtered {
		if err := c.drafts.Save(ctx, key, c.questions); err != nil {
			slog.Warn("Failed to save question draft", "key", key, "error", err)
		}
		c.filtered = false
		c.questions = []models.QuestionDraft{}
		return
	}

	c.filtered = true
	if restored := c.drafts.Load(ctx, key); len(restored) > 0 {
		c.questions = restored
		return
	}
	c.questions = []models.QuestionDraft{blankQuestion("1")}
}

// AddQuestion appends a blank question and returns its index.
func (c *Controller) AddQuestion() (int, error) {
	if !c.filtered {
		return -1, ErrNotFiltered
	}
	c.questions = append(c.questions, blankQuestion(strconv.Itoa(len(c.questions)+1)))
	return len(c.questions) - 1, nil
}

// RemoveQuestion deletes the question at index. The last remaining question
// of a filtered circle cannot be removed.
func (c *Controller) RemoveQuestion(index int) error {
	if index < 0 || index >= len(c.questions) {
		return ErrIndexOutOfRange
	}
	if len(c.questions) <= 1 {
		return ErrLastQuestion
	}
	c.questions = append(c.questions[:index:index], c.questions[index+1:]...)
	return nil
}

// UpdateQuestion sets the text of the question at index.
func (c *Controller) UpdateQuestion(index int, text string) error {
	if index < 0 || index >= len(c.questions) {
		return ErrIndexOutOfRange
	}
	c.questions[index].Question = text
	return nil
}

// UpdateAnswer sets the text of one answer.
func (c *Controller) UpdateAnswer(qIndex, aIndex int, text string) error {
	if qIndex < 0 || qIndex >= len(c.questions) || aIndex < 0 || aIndex >= models.AnswersPerQuestion {
		return ErrIndexOutOfRange
	}
	c.questions[qIndex].Answers[aIndex] = text
	return nil
}

// SetCorrectAnswer marks aIndex as the correct answer of question qIndex.
func (c *Controller) SetCorrectAnswer(qIndex, aIndex int) error {
	if qIndex < 0 || qIndex >= len(c.questions) || aIndex < 0 || aIndex >= models.AnswersPerQuestion {
		return ErrIndexOutOfRange
	}
	c.questions[qIndex].CorrectAnswer = aIndex
	return nil
}

// Validate returns the first problem that blocks saving, as a *ValidationError,
// or nil when the draft can be saved.
func (c *Controller) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return nameRequired()
	}
	if !c.filtered {
		return nil
	}
	for qi, q := range c.questions {
		if strings.TrimSpace(q.Question) == "" {
			return questionRequired(qi)
		}
		for ai, a := range q.Answers {
			if strings.TrimSpace(a) == "" {
				return answerRequired(qi, ai)
			}
		}
	}
	return nil
}

// BuildPayload converts a validated draft into the record to persist. Text is
// trimmed, orders and IDs are recomputed from position, and join questions are
// dropped entirely when the circle is not filtered.
func (c *Controller) BuildPayload() (models.Circle, error) {
	var circle models.Circle
	if c.editing != nil {
		circle = *c.editing
	} else {
		circle = models.NewCircle()
	}

	circle.Name = strings.TrimSpace(c.name)
	circle.Description = strings.TrimSpace(c.description)
	circle.Visibility = c.visibility
	circle.IsFiltered = c.filtered
	circle.BannerImage = c.bannerImage
	circle.IconImage = c.iconImage
	circle.JoinQuestions = []models.Question{}

	if !c.filtered {
		return circle, nil
	}

	for qi, d := range c.questions {
		if d.CorrectAnswer < 0 || d.CorrectAnswer >= models.AnswersPerQuestion {
			return models.Circle{}, ErrInvalidCorrect
		}
		q := models.Question{
			ID:       models.QuestionID(qi),
			Question: strings.TrimSpace(d.Question),
			Order:    qi + 1,
			Answers:  make([]models.Answer, models.AnswersPerQuestion),
		}
		for ai, text := range d.Answers {
			q.Answers[ai] = models.Answer{
				ID:        models.AnswerID(qi, ai),
				Text:      strings.TrimSpace(text),
				Order:     ai + 1,
				IsCorrect: ai == d.CorrectAnswer,
			}
		}
		circle.JoinQuestions = append(circle.JoinQuestions, q)
	}
	return circle, nil
}

// Reset discards the draft, clears its cached questions and returns the
// controller to a blank new-circle state.
func (c *Controller) Reset(ctx context.Context) error {
	key := c.DraftKey()
	c.clear()
	return c.drafts.Clear(ctx, key)
}
