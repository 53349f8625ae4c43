// Package models defines the core domain models for the circles dashboard.
//
// # Models
//
//   - Circle: a community group, optionally gated by join questions
//   - Question: one multiple-choice join question owned by a circle
//   - Answer: one option of a question, exactly one of which is correct
//   - QuestionDraft: the editable, not-yet-normalized form of a question
//   - User: a registered dashboard account
//
// # Design Principles
//
//  1. **Embedded questions**: questions and answers have no lifecycle of their own.
//     They live inside Circle.JoinQuestions and are replaced wholesale on save.
//  2. **Dense ordering**: Order fields are derived from slice position when a
//     circle is saved and are never edited independently.
//  3. **Column names on the wire**: JSON tags match the circles table columns so
//     the same struct is used for rows, RPC messages and draft caches.
package models
