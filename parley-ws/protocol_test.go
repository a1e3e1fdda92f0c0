package parleyws

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	"github.com/tj/assert"
)

func TestParseJoinRoom(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		req, err := ParseJoinRoom(`{"action":"joinRoom","roomId":"room1","userId":"user1"}`)
		assert.NoError(t, err)
		assert.Equal(t, "room1", req.RoomID)
		assert.Equal(t, "user1", req.UserID)
	})

	t.Run("userId is optional", func(t *testing.T) {
		req, err := ParseJoinRoom(`{"roomId":"room1"}`)
		assert.NoError(t, err)
		assert.Equal(t, "room1", req.RoomID)
		assert.Empty(t, req.UserID)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := ParseJoinRoom("")
		assert.True(t, errors.Is(err, ErrMissingBody))
	})

	t.Run("missing roomId", func(t *testing.T) {
		_, err := ParseJoinRoom(`{"userId":"user1"}`)
		assert.True(t, errors.Is(err, ErrMissingFields))
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := ParseJoinRoom(`{nope`)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrMissingBody))
	})
}

func TestParseSendMessage(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		req, err := ParseSendMessage(`{"roomId":"room1","userId":"user1","content":"Hello"}`)
		assert.NoError(t, err)
		assert.Equal(t, "room1", req.RoomID)
		assert.Equal(t, "user1", req.UserID)
		assert.Equal(t, "Hello", req.Content)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := ParseSendMessage("")
		assert.True(t, errors.Is(err, ErrMissingBody))
	})

	t.Run("empty object", func(t *testing.T) {
		_, err := ParseSendMessage(`{}`)
		assert.True(t, errors.Is(err, ErrMissingFields))
	})

	t.Run("each field is required", func(t *testing.T) {
		for _, body := range []string{
			`{"userId":"user1","content":"hi"}`,
			`{"roomId":"room1","content":"hi"}`,
			`{"roomId":"room1","userId":"user1"}`,
		} {
			_, err := ParseSendMessage(body)
			assert.True(t, errors.Is(err, ErrMissingFields), body)
		}
	})
}

func TestJoinedRoomMessage(t *testing.T) {
	t.Run("nil history encodes as empty list", func(t *testing.T) {
		data, err := JoinedRoomMessage("room1", nil)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"messages":[]`)
	})

	t.Run("history rows replay verbatim", func(t *testing.T) {
		data, err := JoinedRoomMessage("room1", []messagedao.Message{
			{PK: "ROOM#room1", SK: "MSG#abc", RoomID: "room1", UserID: "user1", Content: "hi", Timestamp: 42},
		})
		assert.NoError(t, err)

		var payload JoinedRoomPayload
		assert.NoError(t, json.Unmarshal(data, &payload))
		assert.Equal(t, "joinedRoom", payload.UserAction)
		assert.Len(t, payload.Messages, 1)
		assert.Equal(t, "MSG#abc", payload.Messages[0].SK)
		assert.EqualValues(t, 42, payload.Messages[0].Timestamp)
	})
}

func TestIsGone(t *testing.T) {
	assert.False(t, IsGone(nil))
	assert.True(t, IsGone(errors.New("GoneException: connection is gone")))
	assert.True(t, IsGone(errors.New("status code: 410, request id: x")))
	assert.False(t, IsGone(errors.New("ThrottlingException")))
}
