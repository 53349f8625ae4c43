// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/circles/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CircleStore defines the row-level operations on the circles table.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type CircleStore interface {
	// ListCircles returns every circle ordered by created_at, newest first.
	ListCircles(ctx context.Context) ([]models.Circle, error)

	// GetCircle retrieves a circle by its ID.
	// Returns an error wrapping ErrNotFound if the circle does not exist.
	GetCircle(ctx context.Context, circleID string) (*models.Circle, error)

	// CreateCircle persists a new circle.
	// The circle.ID and circle.CreatedAt fields are populated by the store.
	CreateCircle(ctx context.Context, circle *models.Circle) error

	// UpdateCircle replaces the editable fields of an existing circle:
	// name, description, visibility, is_filtered, images and join questions.
	// Returns an error wrapping ErrNotFound if the circle does not exist.
	UpdateCircle(ctx context.Context, circle *models.Circle) error

	// DeleteCircle removes a circle by ID.
	// Returns an error wrapping ErrNotFound if the circle does not exist.
	DeleteCircle(ctx context.Context, circleID string) error
}

// UserStore defines the persistence operations for dashboard accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store combines every table the backend needs.
type Store interface {
	CircleStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
