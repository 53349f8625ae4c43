package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/circles/internal/auth"
	"github.com/mmynk/circles/internal/middleware"
	pb "github.com/mmynk/circles/pkg/circlesv1"
)

// Register mounts every circles.v1 procedure on mux. interceptors wrap all
// handlers; procedures that need a signed-in caller additionally run
// RequireAuth inside them.
func Register(mux *http.ServeMux, circles *CircleService, authSvc *AuthService, jwtManager *auth.JWTManager, interceptors ...connect.Interceptor) {
	public := []connect.HandlerOption{
		connect.WithCodec(pb.Codec{}),
		connect.WithInterceptors(interceptors...),
	}
	private := []connect.HandlerOption{
		connect.WithCodec(pb.Codec{}),
		connect.WithInterceptors(append([]connect.Interceptor{middleware.RequireAuth(jwtManager)}, interceptors...)...),
	}

	mux.Handle(pb.CircleServiceListCirclesProcedure,
		connect.NewUnaryHandler(pb.CircleServiceListCirclesProcedure, circles.ListCircles, private...))
	mux.Handle(pb.CircleServiceGetCircleProcedure,
		connect.NewUnaryHandler(pb.CircleServiceGetCircleProcedure, circles.GetCircle, private...))
	mux.Handle(pb.CircleServiceCreateCircleProcedure,
		connect.NewUnaryHandler(pb.CircleServiceCreateCircleProcedure, circles.CreateCircle, private...))
	mux.Handle(pb.CircleServiceUpdateCircleProcedure,
		connect.NewUnaryHandler(pb.CircleServiceUpdateCircleProcedure, circles.UpdateCircle, private...))
	mux.Handle(pb.CircleServiceDeleteCircleProcedure,
		connect.NewUnaryHandler(pb.CircleServiceDeleteCircleProcedure, circles.DeleteCircle, private...))

	mux.Handle(pb.AuthServiceSignUpProcedure,
		connect.NewUnaryHandler(pb.AuthServiceSignUpProcedure, authSvc.SignUp, public...))
	mux.Handle(pb.AuthServiceSignInProcedure,
		connect.NewUnaryHandler(pb.AuthServiceSignInProcedure, authSvc.SignIn, public...))
	mux.Handle(pb.AuthServiceSignOutProcedure,
		connect.NewUnaryHandler(pb.AuthServiceSignOutProcedure, authSvc.SignOut, private...))
	mux.Handle(pb.AuthServiceGetUserProcedure,
		connect.NewUnaryHandler(pb.AuthServiceGetUserProcedure, authSvc.GetUser, private...))
}
