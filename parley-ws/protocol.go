package parleyws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
)

// WebSocket API route keys. joinRoom and sendMessage are selected by API
// Gateway from $request.body.action.
const (
	RouteConnect     = "$connect"
	RouteDisconnect  = "$disconnect"
	RouteJoinRoom    = "joinRoom"
	RouteSendMessage = "sendMessage"
)

var (
	// ErrMissingBody indicates a request that requires a body arrived without one.
	ErrMissingBody = errors.New("missing body")
	// ErrMissingFields indicates a parseable body lacking a required field.
	ErrMissingFields = errors.New("missing required fields")
)

// JoinRoomRequest is the body of a joinRoom frame.
type JoinRoomRequest struct {
	Action string `json:"action,omitempty"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
}

// ParseJoinRoom parses a joinRoom body. The room ID is required; the user ID
// is optional.
func ParseJoinRoom(body string) (JoinRoomRequest, error) {
	if body == "" {
		return JoinRoomRequest{}, ErrMissingBody
	}

	var req JoinRoomRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return JoinRoomRequest{}, fmt.Errorf("invalid joinRoom body: %w", err)
	}
	if req.RoomID == "" {
		return JoinRoomRequest{}, fmt.Errorf("invalid joinRoom body: %w", ErrMissingFields)
	}
	return req, nil
}

// SendMessageRequest is the body of a sendMessage frame.
type SendMessageRequest struct {
	Action  string `json:"action,omitempty"`
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// ParseSendMessage parses a sendMessage body. All three of roomId, userId and
// content are required; an absent body and an absent field are distinct
// failures so the caller can map them to distinct client errors.
func ParseSendMessage(body string) (SendMessageRequest, error) {
	if body == "" {
		return SendMessageRequest{}, ErrMissingBody
	}

	var req SendMessageRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return SendMessageRequest{}, fmt.Errorf("invalid sendMessage body: %w", err)
	}
	if req.RoomID == "" || req.UserID == "" || req.Content == "" {
		return SendMessageRequest{}, fmt.Errorf("invalid sendMessage body: %w", ErrMissingFields)
	}
	return req, nil
}

// JoinedRoomPayload is pushed to the joining connection only, replaying the
// room's history as it stood before the join.
type JoinedRoomPayload struct {
	UserAction string               `json:"userAction"`
	RoomID     string               `json:"roomId"`
	Messages   []messagedao.Message `json:"messages"`
}

// JoinedRoomMessage builds the join-reply payload. The messages field is
// always a list, never null.
func JoinedRoomMessage(roomID string, messages []messagedao.Message) ([]byte, error) {
	if messages == nil {
		messages = []messagedao.Message{}
	}
	data, err := json.Marshal(JoinedRoomPayload{
		UserAction: "joinedRoom",
		RoomID:     roomID,
		Messages:   messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling joinedRoom payload: %w", err)
	}
	return data, nil
}

// ChatMessage is the payload broadcast to every room member.
type ChatMessage struct {
	UserID    string `json:"userId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func marshalChatMessage(msg ChatMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshalling chat message: %w", err)
	}
	return data, nil
}
