package models

import (
	"errors"
	"testing"
)

func validFiltered() Circle {
	c := NewCircle()
	c.Name = "Book Club"
	c.IsFiltered = true
	q := Question{ID: QuestionID(0), Question: "Favorite genre?", Order: 1}
	for i, text := range []string{"Mystery", "Sci-fi", "Poetry", "History"} {
		q.Answers = append(q.Answers, Answer{ID: AnswerID(0, i), Text: text, Order: i + 1, IsCorrect: i == 0})
	}
	c.JoinQuestions = []Question{q}
	return c
}

func TestNewCircleDefaults(t *testing.T) {
	c := NewCircle()
	if c.MemberCount != 1 || c.IsOfficial || c.AutoJoin {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Visibility != VisibilityPublic {
		t.Errorf("expected public visibility, got %q", c.Visibility)
	}
	if c.JoinQuestions == nil {
		t.Error("expected empty, non-nil join questions")
	}
}

func TestIDs(t *testing.T) {
	if got := QuestionID(2); got != "q3" {
		t.Errorf("QuestionID(2) = %q", got)
	}
	if got := AnswerID(0, 3); got != "q1a4" {
		t.Errorf("AnswerID(0, 3) = %q", got)
	}
}

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		in      string
		want    Visibility
		wantErr bool
	}{
		{"", VisibilityPublic, false},
		{"public", VisibilityPublic, false},
		{" Private ", VisibilityPrivate, false},
		{"secret", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVisibility(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseVisibility(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCorrectIndex(t *testing.T) {
	q := validFiltered().JoinQuestions[0]
	q.Answers[0].IsCorrect = false
	q.Answers[2].IsCorrect = true
	if got := q.CorrectIndex(); got != 2 {
		t.Errorf("CorrectIndex() = %d, want 2", got)
	}
	q.Answers[2].IsCorrect = false
	if got := q.CorrectIndex(); got != 0 {
		t.Errorf("CorrectIndex() with none marked = %d, want 0", got)
	}
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Circle)
		valid  bool
	}{
		{"valid filtered", func(c *Circle) {}, true},
		{"valid unfiltered", func(c *Circle) { c.IsFiltered = false; c.JoinQuestions = nil }, true},
		{"blank name", func(c *Circle) { c.Name = " " }, false},
		{"bad visibility", func(c *Circle) { c.Visibility = "friends" }, false},
		{"unfiltered with questions", func(c *Circle) { c.IsFiltered = false }, false},
		{"filtered without questions", func(c *Circle) { c.JoinQuestions = []Question{} }, false},
		{"blank question", func(c *Circle) { c.JoinQuestions[0].Question = "" }, false},
		{"question order gap", func(c *Circle) { c.JoinQuestions[0].Order = 2 }, false},
		{"three answers", func(c *Circle) { c.JoinQuestions[0].Answers = c.JoinQuestions[0].Answers[:3] }, false},
		{"blank answer", func(c *Circle) { c.JoinQuestions[0].Answers[3].Text = "  " }, false},
		{"answer order", func(c *Circle) { c.JoinQuestions[0].Answers[1].Order = 5 }, false},
		{"no correct answer", func(c *Circle) { c.JoinQuestions[0].Answers[0].IsCorrect = false }, false},
		{"two correct answers", func(c *Circle) { c.JoinQuestions[0].Answers[1].IsCorrect = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validFiltered()
			tt.mutate(&c)
			err := c.CheckInvariants()
			if tt.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidCircle) {
				t.Fatalf("expected ErrInvalidCircle, got %v", err)
			}
		})
	}
}
