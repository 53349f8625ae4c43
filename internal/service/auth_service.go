package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/middleware"
	"github.com/mmynk/circles/internal/storage"
	pb "github.com/mmynk/circles/pkg/circlesv1"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         storage.UserStore
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users storage.UserStore, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// SignUp creates a new user account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req *connect.Request[pb.SignUpRequest]) (*connect.Response[pb.SignUpResponse], error) {
	s.logger.Info("SignUp request", "email", req.Msg.Email)

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Metadata["name"], req.Msg.Password)
	if err != nil {
		var formErr *auth.FormError
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			s.logger.Warn("Registration rejected", "email", req.Msg.Email, "error", err)
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.As(err, &formErr):
			s.logger.Warn("Registration rejected", "email", req.Msg.Email, "field", formErr.Field, "error", err)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&pb.SignUpResponse{User: pb.NewUser(user), Token: token}), nil
}

// SignIn authenticates a user and returns a JWT token.
func (s *AuthService) SignIn(ctx context.Context, req *connect.Request[pb.SignInRequest]) (*connect.Response[pb.SignInResponse], error) {
	s.logger.Info("SignIn request", "email", req.Msg.Email)

	if err := auth.ValidateSignIn(auth.SignInForm{Email: req.Msg.Email, Password: req.Msg.Password}); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Warn("SignIn failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		s.logger.Error("SignIn failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return connect.NewResponse(&pb.SignInResponse{User: pb.NewUser(user), Token: token}), nil
}

// SignOut revokes the token the request was made with.
func (s *AuthService) SignOut(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	s.jwtManager.Revoke(claims)

	s.logger.Info("User signed out", "user_id", claims.UserID)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// GetUser returns the currently authenticated user.
func (s *AuthService) GetUser(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[pb.GetUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		// The account behind a still-valid token is gone.
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		s.logger.Error("GetUser failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&pb.GetUserResponse{User: pb.NewUser(user)}), nil
}
