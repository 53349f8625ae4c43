package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/circles/internal/images"
	"github.com/mmynk/circles/internal/middleware"
	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/storage"
	pb "github.com/mmynk/circles/pkg/circlesv1"
)

// CircleService implements the Connect CircleService.
type CircleService struct {
	store  storage.CircleStore
	images images.Store
}

// NewCircleService creates a CircleService backed by store. Inline data-URI
// images are passed through imageStore on save, so a remote store turns them
// into URLs.
func NewCircleService(store storage.CircleStore, imageStore images.Store) *CircleService {
	if imageStore == nil {
		imageStore = images.NewDataURIStore()
	}
	return &CircleService{store: store, images: imageStore}
}

// ListCircles returns every circle, newest first.
func (s *CircleService) ListCircles(ctx context.Context, req *connect.Request[pb.ListCirclesRequest]) (*connect.Response[pb.ListCirclesResponse], error) {
	slog.Info("ListCircles request received")

	circles, err := s.store.ListCircles(ctx)
	if err != nil {
		slog.Error("ListCircles failed", "error", err)
		return nil, toConnectError(err)
	}
	if circles == nil {
		circles = []models.Circle{}
	}

	slog.Info("ListCircles successful", "count", len(circles))
	return connect.NewResponse(&pb.ListCirclesResponse{Circles: circles}), nil
}

// GetCircle retrieves a circle by ID.
func (s *CircleService) GetCircle(ctx context.Context, req *connect.Request[pb.GetCircleRequest]) (*connect.Response[pb.GetCircleResponse], error) {
	slog.Info("GetCircle request received", "circle_id", req.Msg.CircleID)

	circle, err := s.store.GetCircle(ctx, req.Msg.CircleID)
	if err != nil {
		slog.Error("GetCircle failed", "circle_id", req.Msg.CircleID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.GetCircleResponse{Circle: *circle}), nil
}

// CreateCircle inserts a circle with the creation defaults for server-managed
// fields and the caller as its creator.
func (s *CircleService) CreateCircle(ctx context.Context, req *connect.Request[pb.CreateCircleRequest]) (*connect.Response[pb.CreateCircleResponse], error) {
	slog.Info("CreateCircle request received",
		"name", req.Msg.Circle.Name,
		"is_filtered", req.Msg.Circle.IsFiltered,
		"questions_count", len(req.Msg.Circle.JoinQuestions),
	)

	circle := models.NewCircle()
	if err := s.applyEditable(ctx, &circle, req.Msg.Circle); err != nil {
		slog.Warn("CreateCircle rejected", "error", err)
		return nil, toConnectError(err)
	}
	circle.CreatedBy = middleware.GetUserID(ctx)

	if err := s.store.CreateCircle(ctx, &circle); err != nil {
		slog.Error("CreateCircle failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Circle created", "circle_id", circle.ID, "created_by", circle.CreatedBy)
	return connect.NewResponse(&pb.CreateCircleResponse{Circle: circle}), nil
}

// UpdateCircle replaces the editable fields of an existing circle.
func (s *CircleService) UpdateCircle(ctx context.Context, req *connect.Request[pb.UpdateCircleRequest]) (*connect.Response[pb.UpdateCircleResponse], error) {
	id := req.Msg.Circle.ID
	slog.Info("UpdateCircle request received", "circle_id", id, "name", req.Msg.Circle.Name)

	existing, err := s.store.GetCircle(ctx, id)
	if err != nil {
		slog.Error("UpdateCircle lookup failed", "circle_id", id, "error", err)
		return nil, toConnectError(err)
	}

	circle := *existing
	if err := s.applyEditable(ctx, &circle, req.Msg.Circle); err != nil {
		slog.Warn("UpdateCircle rejected", "circle_id", id, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateCircle(ctx, &circle); err != nil {
		slog.Error("UpdateCircle failed", "circle_id", id, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Circle updated", "circle_id", id)
	return connect.NewResponse(&pb.UpdateCircleResponse{Circle: circle}), nil
}

// DeleteCircle removes a circle by ID.
func (s *CircleService) DeleteCircle(ctx context.Context, req *connect.Request[pb.DeleteCircleRequest]) (*connect.Response[emptypb.Empty], error) {
	slog.Info("DeleteCircle request received", "circle_id", req.Msg.CircleID)

	if err := s.store.DeleteCircle(ctx, req.Msg.CircleID); err != nil {
		slog.Error("DeleteCircle failed", "circle_id", req.Msg.CircleID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Circle deleted", "circle_id", req.Msg.CircleID)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// applyEditable copies the user-editable fields of in onto circle, moves inline
// images to the image store and checks the stored-circle invariants.
func (s *CircleService) applyEditable(ctx context.Context, circle *models.Circle, in models.Circle) error {
	visibility, err := models.ParseVisibility(string(in.Visibility))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidCircle, err)
	}

	circle.Name = in.Name
	circle.Description = in.Description
	circle.Visibility = visibility
	circle.IsFiltered = in.IsFiltered
	circle.JoinQuestions = in.JoinQuestions
	if circle.JoinQuestions == nil {
		circle.JoinQuestions = []models.Question{}
	}

	if err := circle.CheckInvariants(); err != nil {
		return err
	}

	if circle.BannerImage, err = s.storeImage(ctx, "banner", in.BannerImage); err != nil {
		return err
	}
	if circle.IconImage, err = s.storeImage(ctx, "icon", in.IconImage); err != nil {
		return err
	}
	return nil
}

// storeImage pushes an inline data URI through the image store and returns
// the value to persist. URLs and empty values are returned unchanged.
func (s *CircleService) storeImage(ctx context.Context, kind, value string) (string, error) {
	if !images.IsDataURI(value) {
		return value, nil
	}
	contentType, data, err := images.ParseDataURI(value)
	if err != nil {
		return "", err
	}
	url, err := s.images.Upload(ctx, kind, contentType, data)
	if err != nil {
		return "", fmt.Errorf("failed to store %s image: %w", kind, err)
	}
	return url, nil
}

// toConnectError maps domain errors onto Connect status codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrInvalidCircle),
		errors.Is(err, images.ErrTooLarge),
		errors.Is(err, images.ErrNotImage),
		errors.Is(err, images.ErrEmptyImage),
		errors.Is(err, images.ErrBadDataURI):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
