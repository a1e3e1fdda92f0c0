package memberdao

import (
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
)

// Membership asserts that a connection is currently joined to a room. The
// sort key is the member's identity: re-joining overwrites the row rather
// than duplicating it.
type Membership struct {
	PK       string `dynamodbav:"PK" ddb:"hash"`
	SK       string `dynamodbav:"SK" ddb:"range"`
	UserID   string `dynamodbav:"userId,omitempty"`
	JoinedAt int64  `dynamodbav:"joinedAt"`
}

// NewMembership builds the row joining connID to roomID.
func NewMembership(roomID, connID, userID string, joinedAt int64) Membership {
	key := chatkey.MemberKey{RoomID: roomID, ConnID: connID}
	return Membership{
		PK:       key.PartitionKey(),
		SK:       key.SortKey(),
		UserID:   userID,
		JoinedAt: joinedAt,
	}
}

// ConnectionID recovers the member's delivery address from the sort key.
// This parse is the only source of fan-out addresses.
func (m Membership) ConnectionID() string {
	connID, _ := chatkey.ParseMemberSortKey(m.SK)
	return connID
}
