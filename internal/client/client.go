// Package client talks to the circles.v1 Connect API on behalf of the dashboard.
package client

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/circles/internal/collection"
	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/session"
	pb "github.com/mmynk/circles/pkg/circlesv1"
)

var (
	_ collection.Source = (*Client)(nil)
	_ session.Backend   = (*Client)(nil)
)

// Client is a Connect client for CircleService and AuthService. It keeps the
// access token of the current session and attaches it to every call.
type Client struct {
	mu    sync.RWMutex
	token string

	listCircles  *connect.Client[pb.ListCirclesRequest, pb.ListCirclesResponse]
	getCircle    *connect.Client[pb.GetCircleRequest, pb.GetCircleResponse]
	createCircle *connect.Client[pb.CreateCircleRequest, pb.CreateCircleResponse]
	updateCircle *connect.Client[pb.UpdateCircleRequest, pb.UpdateCircleResponse]
	deleteCircle *connect.Client[pb.DeleteCircleRequest, emptypb.Empty]

	signUp  *connect.Client[pb.SignUpRequest, pb.SignUpResponse]
	signIn  *connect.Client[pb.SignInRequest, pb.SignInResponse]
	signOut *connect.Client[emptypb.Empty, emptypb.Empty]
	getUser *connect.Client[emptypb.Empty, pb.GetUserResponse]
}

// New creates a client for the API served at baseURL.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{}
	opts = append([]connect.ClientOption{
		connect.WithCodec(pb.Codec{}),
		connect.WithInterceptors(c.bearerInterceptor()),
	}, opts...)

	c.listCircles = connect.NewClient[pb.ListCirclesRequest, pb.ListCirclesResponse](httpClient, baseURL+pb.CircleServiceListCirclesProcedure, opts...)
	c.getCircle = connect.NewClient[pb.GetCircleRequest, pb.GetCircleResponse](httpClient, baseURL+pb.CircleServiceGetCircleProcedure, opts...)
	c.createCircle = connect.NewClient[pb.CreateCircleRequest, pb.CreateCircleResponse](httpClient, baseURL+pb.CircleServiceCreateCircleProcedure, opts...)
	c.updateCircle = connect.NewClient[pb.UpdateCircleRequest, pb.UpdateCircleResponse](httpClient, baseURL+pb.CircleServiceUpdateCircleProcedure, opts...)
	c.deleteCircle = connect.NewClient[pb.DeleteCircleRequest, emptypb.Empty](httpClient, baseURL+pb.CircleServiceDeleteCircleProcedure, opts...)

	c.signUp = connect.NewClient[pb.SignUpRequest, pb.SignUpResponse](httpClient, baseURL+pb.AuthServiceSignUpProcedure, opts...)
	c.signIn = connect.NewClient[pb.SignInRequest, pb.SignInResponse](httpClient, baseURL+pb.AuthServiceSignInProcedure, opts...)
	c.signOut = connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+pb.AuthServiceSignOutProcedure, opts...)
	c.getUser = connect.NewClient[emptypb.Empty, pb.GetUserResponse](httpClient, baseURL+pb.AuthServiceGetUserProcedure, opts...)
	return c
}

// Token returns the access token of the current session, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the access token attached to outgoing calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearerInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := c.Token(); token != "" && req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// ListCircles returns every circle, newest first.
func (c *Client) ListCircles(ctx context.Context) ([]models.Circle, error) {
	resp, err := c.listCircles.CallUnary(ctx, connect.NewRequest(&pb.ListCirclesRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Circles, nil
}

// GetCircle fetches a single circle.
func (c *Client) GetCircle(ctx context.Context, id string) (models.Circle, error) {
	resp, err := c.getCircle.CallUnary(ctx, connect.NewRequest(&pb.GetCircleRequest{CircleID: id}))
	if err != nil {
		return models.Circle{}, err
	}
	return resp.Msg.Circle, nil
}

// CreateCircle inserts a circle and returns the stored row.
func (c *Client) CreateCircle(ctx context.Context, circle models.Circle) (models.Circle, error) {
	resp, err := c.createCircle.CallUnary(ctx, connect.NewRequest(&pb.CreateCircleRequest{Circle: circle}))
	if err != nil {
		return models.Circle{}, err
	}
	return resp.Msg.Circle, nil
}

// UpdateCircle replaces the editable fields of circle.ID and returns the stored row.
func (c *Client) UpdateCircle(ctx context.Context, circle models.Circle) (models.Circle, error) {
	resp, err := c.updateCircle.CallUnary(ctx, connect.NewRequest(&pb.UpdateCircleRequest{Circle: circle}))
	if err != nil {
		return models.Circle{}, err
	}
	return resp.Msg.Circle, nil
}

// DeleteCircle removes the circle with the given ID.
func (c *Client) DeleteCircle(ctx context.Context, id string) error {
	_, err := c.deleteCircle.CallUnary(ctx, connect.NewRequest(&pb.DeleteCircleRequest{CircleID: id}))
	return err
}
