package circlesv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/circles/internal/models"
)

func TestCodecPlainStruct(t *testing.T) {
	var c Codec
	assert.Equal(t, "json", c.Name())

	in := GetCircleResponse{Circle: models.Circle{ID: "c1", Name: "Book Club", JoinQuestions: []models.Question{}}}
	data, err := c.Marshal(&in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Book Club"`)

	var out GetCircleResponse
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecProtoMessage(t *testing.T) {
	var c Codec
	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	var out emptypb.Empty
	require.NoError(t, c.Unmarshal([]byte(`{"ignored":true}`), &out))
}

func TestNewUser(t *testing.T) {
	assert.Nil(t, NewUser(nil))

	u := &models.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", CreatedAt: 1700000000}
	got := NewUser(u)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, int64(1700000000), got.CreatedAt.AsTime().Unix())
}
