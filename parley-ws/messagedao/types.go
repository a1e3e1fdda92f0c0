package messagedao

import (
	"strings"

	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
)

// Message is a single chat message stored in a room's history. Rows are
// immutable once written; this DAO never updates or deletes them. The json
// tags mirror the stored attribute names because history rows are replayed to
// joining clients as-is.
type Message struct {
	PK        string `dynamodbav:"PK" json:"PK" ddb:"hash"`
	SK        string `dynamodbav:"SK" json:"SK" ddb:"range"`
	RoomID    string `dynamodbav:"roomId" json:"roomId"`
	UserID    string `dynamodbav:"userId" json:"userId"`
	Content   string `dynamodbav:"content" json:"content"`
	Timestamp int64  `dynamodbav:"timestamp" json:"timestamp"`
}

// MessageID recovers the message's UUID from the sort key.
func (m Message) MessageID() string {
	return strings.TrimPrefix(m.SK, chatkey.MessagePrefix)
}
