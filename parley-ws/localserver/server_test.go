package localserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	parleyws "github.com/parley-chat/parley-go-chat/parley-ws"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/parley-chat/parley-go-chat/parley-ws/connectiondao"
	"github.com/parley-chat/parley-go-chat/parley-ws/fakeddb"
	"github.com/parley-chat/parley-go-chat/parley-ws/memberdao"
	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	"github.com/rs/zerolog"
	"github.com/tj/assert"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *parleyws.Handler) {
	var (
		db     = fakeddb.New()
		hub    = NewHub()
		logger = zerolog.Nop()
		table  = chatkey.TableName("test")
	)

	handler := &parleyws.Handler{
		Connections: connectiondao.New(db, table),
		Members:     memberdao.New(db, table),
		Messages:    messagedao.New(db, table),
		Broadcast:   &parleyws.Broadcaster{Poster: hub, Logger: logger},
		Poster:      hub,
		Logger:      logger,
	}

	ts := httptest.NewServer(New(handler, hub, logger).Routes())
	t.Cleanup(ts.Close)
	return ts, hub, handler
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	url := strings.Replace(ts.URL, "http", "ws", 1) + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func eventually(t *testing.T, condition func() bool, msg string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLocalServer(t *testing.T) {
	ts, hub, handler := newTestServer(t)
	ctx := context.Background()

	conn := dial(t, ts, "?userId=user1")
	eventually(t, func() bool { return hub.Len() == 1 }, "connection never registered")

	// joinRoom routes by the frame's action field and replays history
	err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"joinRoom","roomId":"room1","userId":"user1"}`))
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)

	var joined parleyws.JoinedRoomPayload
	assert.NoError(t, json.Unmarshal(data, &joined))
	assert.Equal(t, "joinedRoom", joined.UserAction)
	assert.Equal(t, "room1", joined.RoomID)
	assert.Empty(t, joined.Messages)

	// sendMessage fans back out to the sender
	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"sendMessage","roomId":"room1","userId":"user1","content":"Hello"}`))
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err = conn.ReadMessage()
	assert.NoError(t, err)

	var msg parleyws.ChatMessage
	assert.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "user1", msg.UserID)
	assert.Equal(t, "Hello", msg.Content)

	history, err := handler.Messages.ListHistory(ctx, "room1")
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	// closing the socket unregisters the connection
	conn.Close()
	eventually(t, func() bool { return hub.Len() == 0 }, "connection never unregistered")
}

func TestHubGoneConnection(t *testing.T) {
	hub := NewHub()
	err := hub.PostToConnection(context.Background(), "", "missing", []byte("x"))
	assert.Error(t, err)
	assert.True(t, parleyws.IsGone(err))
}
