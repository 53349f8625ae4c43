// Package collection keeps the in-memory list of circles shown on the dashboard
// and filters it locally.
package collection

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/circles/internal/models"
)

// Source is the remote circles table as seen by the view.
type Source interface {
	// ListCircles returns every circle, newest first.
	ListCircles(ctx context.Context) ([]models.Circle, error)

	// DeleteCircle removes the circle with the given ID.
	DeleteCircle(ctx context.Context, id string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// DeletePrompt is shown before a circle is removed.
const DeletePrompt = "Are you sure you want to delete this circle?"

// View holds the last loaded snapshot of circles and the active search term.
type View struct {
	source Source

	mu      sync.RWMutex
	circles []models.Circle
	term    string
	loaded  bool
	loadErr error
}

// NewView creates an empty view over source.
func NewView(source Source) *View {
	return &View{source: source, circles: []models.Circle{}}
}

// Load fetches all circles. On failure the previous snapshot is kept and the
// error is remembered until the next successful load.
func (v *View) Load(ctx context.Context) error {
	circles, err := v.source.ListCircles(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		slog.Error("Failed to load circles", "error", err)
		v.loadErr = err
		return err
	}
	if circles == nil {
		circles = []models.Circle{}
	}
	v.circles = circles
	v.loaded = true
	v.loadErr = nil
	return nil
}

// Err returns the error of the last failed load, or nil.
func (v *View) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadErr
}

// Loaded reports whether at least one load has succeeded.
func (v *View) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// All returns the full snapshot in load order.
func (v *View) All() []models.Circle {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Circle, len(v.circles))
	copy(out, v.circles)
	return out
}

// Get returns the circle with the given ID from the snapshot.
func (v *View) Get(id string) (models.Circle, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, c := range v.circles {
		if c.ID == id {
			return c, true
		}
	}
	return models.Circle{}, false
}

// SetSearchTerm changes the filter applied by Visible.
func (v *View) SetSearchTerm(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.term = term
}

// SearchTerm returns the active filter.
func (v *View) SearchTerm() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.term
}

// Visible returns the circles whose name or description contains the search
// term, ignoring case, in their original order.
func (v *View) Visible() []models.Circle {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Filter(v.circles, v.term)
}

// Filter returns the circles matching term. An empty term matches everything.
func Filter(circles []models.Circle, term string) []models.Circle {
	out := make([]models.Circle, 0, len(circles))
	if term == "" {
		return append(out, circles...)
	}
	needle := strings.ToLower(term)
	for _, c := range circles {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Remove deletes a circle once confirm approves it, then reloads the list.
// It reports whether the delete was issued.
func (v *View) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if !confirm.Confirm(ctx, DeletePrompt) {
		slog.Debug("Circle delete cancelled", "circle_id", id)
		return false, nil
	}

	if err := v.source.DeleteCircle(ctx, id); err != nil {
		slog.Error("Failed to delete circle", "circle_id", id, "error", err)
		return true, err
	}
	slog.Info("Circle deleted", "circle_id", id)

	return true, v.Load(ctx)
}
