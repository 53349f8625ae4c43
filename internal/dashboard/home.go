// Package dashboard drives the circle admin screens: the authenticated home
// view with its circle form and list, and the routing between login, signup
// and home.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/circles/internal/collection"
	"github.com/mmynk/circles/internal/form"
	"github.com/mmynk/circles/internal/images"
	"github.com/mmynk/circles/internal/models"
)

var (
	ErrSubmitInProgress = errors.New("a save is already in progress")
	ErrUnknownCircle    = errors.New("circle is not in the loaded list")
)

// Messages shown in the banner and notice areas.
const (
	MsgLoadFailed    = "Failed to load circles"
	MsgCreated       = "Circle created successfully!"
	MsgUpdated       = "Circle updated successfully!"
	MsgDeleted       = "Circle deleted successfully!"
	saveErrorPrefix  = "Error saving circle: "
	deleteErrPrefix  = "Error deleting circle: "
	genericSaveError = "Error saving circle"
)

// ImageKind selects which image field an upload fills.
type ImageKind string

const (
	ImageBanner ImageKind = "banner"
	ImageIcon   ImageKind = "icon"
)

// CircleTable is the remote circles table used for saving.
type CircleTable interface {
	CreateCircle(ctx context.Context, circle models.Circle) (models.Circle, error)
	UpdateCircle(ctx context.Context, circle models.Circle) (models.Circle, error)
}

// Home is the authenticated home view: one circle form and the circle list.
type Home struct {
	Form *form.Controller
	View *collection.View

	table  CircleTable
	images images.Store

	mu         sync.Mutex
	submitting bool
	fieldErr   *form.ValidationError
	banner     string
	notice     string
}

// NewHome wires a home view. A nil image store keeps images inline.
func NewHome(f *form.Controller, view *collection.View, table CircleTable, imageStore images.Store) *Home {
	if imageStore == nil {
		imageStore = images.NewDataURIStore()
	}
	return &Home{Form: f, View: view, table: table, images: imageStore}
}

// Refresh reloads the circle list, showing MsgLoadFailed on failure.
func (h *Home) Refresh(ctx context.Context) error {
	if err := h.View.Load(ctx); err != nil {
		h.setBanner(MsgLoadFailed)
		return err
	}
	return nil
}

// StartCreate clears the form for a new circle.
func (h *Home) StartCreate(ctx context.Context) error {
	h.clearMessages()
	return h.Form.Reset(ctx)
}

// StartEdit loads the circle with the given ID from the list into the form,
// discarding the question draft of the form being left.
func (h *Home) StartEdit(ctx context.Context, id string) error {
	circle, ok := h.View.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCircle, id)
	}
	h.clearMessages()
	if err := h.Form.Edit(ctx, circle); err != nil {
		slog.Warn("Failed to clear question draft", "circle_id", id, "error", err)
	}
	return nil
}

// AttachImage stores an uploaded file and puts its URL in the banner or icon field.
func (h *Home) AttachImage(ctx context.Context, kind ImageKind, filename string, data []byte) error {
	url, err := h.images.Upload(ctx, filename, "", data)
	if err != nil {
		slog.Warn("Image rejected", "kind", kind, "file", filename, "error", err)
		return err
	}
	switch kind {
	case ImageBanner:
		h.Form.SetBannerImage(url)
	case ImageIcon:
		h.Form.SetIconImage(url)
	default:
		return fmt.Errorf("unknown image kind %q", kind)
	}
	return nil
}

// Submit validates the form and saves it. Validation failures are reported
// through FieldError and never reach the network; save failures through
// Banner. After a successful save the form is reset and the list reloaded.
// A second Submit while one is running returns ErrSubmitInProgress.
func (h *Home) Submit(ctx context.Context) error {
	h.mu.Lock()
	if h.submitting {
		h.mu.Unlock()
		return ErrSubmitInProgress
	}
	h.submitting = true
	h.fieldErr = nil
	h.banner = ""
	h.notice = ""
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.submitting = false
		h.mu.Unlock()
	}()

	if err := h.Form.Validate(); err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			h.mu.Lock()
			h.fieldErr = ve
			h.mu.Unlock()
		}
		return err
	}

	payload, err := h.Form.BuildPayload()
	if err != nil {
		h.setBanner(saveErrorPrefix + err.Error())
		return err
	}

	editing := h.Form.IsEditing()
	if editing {
		_, err = h.table.UpdateCircle(ctx, payload)
	} else {
		_, err = h.table.CreateCircle(ctx, payload)
	}
	if err != nil {
		slog.Error("Failed to save circle", "circle_id", payload.ID, "error", err)
		h.setBanner(saveMessage(err))
		return err
	}

	if editing {
		h.setNotice(MsgUpdated)
	} else {
		h.setNotice(MsgCreated)
	}

	if err := h.Form.Reset(ctx); err != nil {
		slog.Warn("Failed to clear question draft", "error", err)
	}
	if err := h.Refresh(ctx); err != nil {
		slog.Warn("Failed to reload circles after save", "error", err)
	}
	return nil
}

// Delete asks confirm, deletes the circle and reloads the list. It reports
// whether a delete was issued.
func (h *Home) Delete(ctx context.Context, id string, confirm collection.Confirmer) (bool, error) {
	h.clearMessages()
	issued, err := h.View.Remove(ctx, id, confirm)
	if !issued {
		return false, nil
	}
	if err != nil {
		if errors.Is(err, h.View.Err()) {
			// The delete went through; only the reload failed.
			h.setBanner(MsgLoadFailed)
			return true, err
		}
		h.setBanner(deleteErrPrefix + message(err))
		return true, err
	}
	h.setNotice(MsgDeleted)
	return true, nil
}

// Submitting reports whether a save is in flight; the submit control is
// disabled while it is.
func (h *Home) Submitting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.submitting
}

// FieldError returns the validation error of the last submit, or nil.
func (h *Home) FieldError() *form.ValidationError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fieldErr
}

// Banner returns the current error banner text.
func (h *Home) Banner() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.banner
}

// Notice returns the current success message.
func (h *Home) Notice() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notice
}

// DismissBanner hides the error banner.
func (h *Home) DismissBanner() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.banner = ""
}

func (h *Home) setBanner(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.banner = msg
}

func (h *Home) setNotice(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notice = msg
}

func (h *Home) clearMessages() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fieldErr = nil
	h.banner = ""
	h.notice = ""
}

// message extracts the user-facing text of a remote error. Connect errors
// carry it without the status code prefix.
func message(err error) string {
	var withMessage interface{ Message() string }
	if errors.As(err, &withMessage) && withMessage.Message() != "" {
		return withMessage.Message()
	}
	return err.Error()
}

func saveMessage(err error) string {
	if msg := message(err); msg != "" {
		return saveErrorPrefix + msg
	}
	return genericSaveError
}
