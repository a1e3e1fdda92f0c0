// Package chatkey defines the composite keys of the single chat table.
//
// Every row lives in one table addressed by (PK, SK). The string shapes below
// are a storage contract shared with existing deployments: member connection
// IDs are recovered by parsing the sort key, so the prefixes must not change.
package chatkey

import (
	"strings"

	uuid "github.com/satori/go.uuid"
)

const (
	ConnectionPrefix = "CONNECTION#"
	RoomPrefix       = "ROOM#"
	MemberPrefix     = "MEMBER#"
	MessagePrefix    = "MSG#"
	MetadataSortKey  = "METADATA"
)

// TableName returns the chat table name for the given environment.
func TableName(env string) string {
	return env + "-parley-chat--rooms"
}

// ConnectionKey addresses the metadata row of a live connection.
type ConnectionKey struct {
	ConnID string
}

func (k ConnectionKey) PartitionKey() string { return ConnectionPrefix + k.ConnID }
func (k ConnectionKey) SortKey() string      { return MetadataSortKey }

// MemberKey addresses a room membership row. The sort key carries the member's
// connection ID, which is the sole way fan-out recovers delivery addresses.
type MemberKey struct {
	RoomID string
	ConnID string
}

func (k MemberKey) PartitionKey() string { return RoomPrefix + k.RoomID }
func (k MemberKey) SortKey() string      { return MemberPrefix + k.ConnID }

// ParseMemberSortKey extracts the connection ID from a membership sort key.
func ParseMemberSortKey(sk string) (connID string, ok bool) {
	if !strings.HasPrefix(sk, MemberPrefix) {
		return "", false
	}
	connID = sk[len(MemberPrefix):]
	return connID, connID != ""
}

// MessageKey addresses a message row within a room. Message IDs are V4 UUIDs,
// so sort-key order is not chronological; the timestamp attribute is.
type MessageKey struct {
	RoomID    string
	MessageID string
}

// NewMessageKey allocates a key for a fresh message in the given room.
func NewMessageKey(roomID string) MessageKey {
	return MessageKey{
		RoomID:    roomID,
		MessageID: uuid.NewV4().String(),
	}
}

func (k MessageKey) PartitionKey() string { return RoomPrefix + k.RoomID }
func (k MessageKey) SortKey() string      { return MessagePrefix + k.MessageID }

// RoomPartitionKey returns the partition key shared by a room's membership and
// message rows.
func RoomPartitionKey(roomID string) string {
	return RoomPrefix + roomID
}
