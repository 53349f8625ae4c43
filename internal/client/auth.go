package client

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/circles/internal/models"
	"github.com/mmynk/circles/internal/session"
	pb "github.com/mmynk/circles/pkg/circlesv1"
)

func toModel(u *pb.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.AsTime().Unix(),
	}
}

// SignInWithPassword authenticates and keeps the returned token for later calls.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error) {
	resp, err := c.signIn.CallUnary(ctx, connect.NewRequest(&pb.SignInRequest{Email: email, Password: password}))
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Msg.Token)
	return &session.Session{User: toModel(resp.Msg.User), AccessToken: resp.Msg.Token}, nil
}

// SignUp registers an account and keeps the returned token for later calls.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*session.Session, error) {
	resp, err := c.signUp.CallUnary(ctx, connect.NewRequest(&pb.SignUpRequest{
		Email:    email,
		Password: password,
		Metadata: metadata,
	}))
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Msg.Token)
	return &session.Session{User: toModel(resp.Msg.User), AccessToken: resp.Msg.Token}, nil
}

// GetUser returns the signed-in user, or nil without error when there is no session.
func (c *Client) GetUser(ctx context.Context) (*models.User, error) {
	if c.Token() == "" {
		return nil, nil
	}
	resp, err := c.getUser.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if connect.CodeOf(err) == connect.CodeUnauthenticated {
		c.SetToken("")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModel(resp.Msg.User), nil
}

// SignOut revokes the current token on the server and forgets it locally.
// The local token is dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	defer c.SetToken("")
	_, err := c.signOut.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if connect.CodeOf(err) == connect.CodeUnauthenticated {
		return nil
	}
	return err
}
