// Package circlesv1 defines the messages and procedure names of the circles.v1
// Connect API shared by the server and its clients.
package circlesv1

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/circles/internal/models"
)

const (
	CircleServiceName = "circles.v1.CircleService"
	AuthServiceName   = "circles.v1.AuthService"
)

// Fully-qualified procedure paths, usable as http.ServeMux patterns.
const (
	CircleServiceListCirclesProcedure  = "/" + CircleServiceName + "/ListCircles"
	CircleServiceGetCircleProcedure    = "/" + CircleServiceName + "/GetCircle"
	CircleServiceCreateCircleProcedure = "/" + CircleServiceName + "/CreateCircle"
	CircleServiceUpdateCircleProcedure = "/" + CircleServiceName + "/UpdateCircle"
	CircleServiceDeleteCircleProcedure = "/" + CircleServiceName + "/DeleteCircle"

	AuthServiceSignUpProcedure  = "/" + AuthServiceName + "/SignUp"
	AuthServiceSignInProcedure  = "/" + AuthServiceName + "/SignIn"
	AuthServiceSignOutProcedure = "/" + AuthServiceName + "/SignOut"
	AuthServiceGetUserProcedure = "/" + AuthServiceName + "/GetUser"
)

type ListCirclesRequest struct{}

type ListCirclesResponse struct {
	Circles []models.Circle `json:"circles"`
}

type GetCircleRequest struct {
	CircleID string `json:"circle_id"`
}

type GetCircleResponse struct {
	Circle models.Circle `json:"circle"`
}

// CreateCircleRequest carries the editable fields of a new circle.
// Server-managed fields in Circle are ignored.
type CreateCircleRequest struct {
	Circle models.Circle `json:"circle"`
}

type CreateCircleResponse struct {
	Circle models.Circle `json:"circle"`
}

// UpdateCircleRequest replaces the editable fields of Circle.ID.
type UpdateCircleRequest struct {
	Circle models.Circle `json:"circle"`
}

type UpdateCircleResponse struct {
	Circle models.Circle `json:"circle"`
}

type DeleteCircleRequest struct {
	CircleID string `json:"circle_id"`
}

// User is the public view of an account.
type User struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	DisplayName string                 `json:"display_name"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
}

// SignUpRequest creates an account. Metadata["name"] is the display name.
type SignUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type SignUpResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

// NewUser converts a stored account into its public view.
func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   timestamppb.New(time.Unix(u.CreatedAt, 0)),
	}
}
