package connectiondao

import (
	"strings"

	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
)

// Connection is the metadata row for a live WebSocket connection. A row exists
// iff the connection is currently open.
type Connection struct {
	PK          string `dynamodbav:"PK" ddb:"hash"`
	SK          string `dynamodbav:"SK" ddb:"range"`
	UserID      string `dynamodbav:"userId,omitempty"`
	ConnectedAt int64  `dynamodbav:"connectedAt"`
}

// NewConnection builds the row for the given connection.
func NewConnection(connID, userID string, connectedAt int64) Connection {
	key := chatkey.ConnectionKey{ConnID: connID}
	return Connection{
		PK:          key.PartitionKey(),
		SK:          key.SortKey(),
		UserID:      userID,
		ConnectedAt: connectedAt,
	}
}

// ConnectionID recovers the connection ID from the partition key.
func (c Connection) ConnectionID() string {
	return strings.TrimPrefix(c.PK, chatkey.ConnectionPrefix)
}
