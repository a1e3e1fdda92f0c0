package chatkey

import (
	"strings"
	"testing"

	"github.com/tj/assert"
)

func TestKeys(t *testing.T) {
	t.Run("connection", func(t *testing.T) {
		k := ConnectionKey{ConnID: "abc123"}
		assert.Equal(t, "CONNECTION#abc123", k.PartitionKey())
		assert.Equal(t, "METADATA", k.SortKey())
	})

	t.Run("member", func(t *testing.T) {
		k := MemberKey{RoomID: "room1", ConnID: "conn1"}
		assert.Equal(t, "ROOM#room1", k.PartitionKey())
		assert.Equal(t, "MEMBER#conn1", k.SortKey())
	})

	t.Run("member sort key round trip", func(t *testing.T) {
		k := MemberKey{RoomID: "room1", ConnID: "conn=with#odd/chars"}
		connID, ok := ParseMemberSortKey(k.SortKey())
		assert.True(t, ok)
		assert.Equal(t, "conn=with#odd/chars", connID)
	})

	t.Run("parse rejects foreign sort keys", func(t *testing.T) {
		_, ok := ParseMemberSortKey("MSG#deadbeef")
		assert.False(t, ok)

		_, ok = ParseMemberSortKey("MEMBER#")
		assert.False(t, ok)
	})

	t.Run("message", func(t *testing.T) {
		k := NewMessageKey("room1")
		assert.Equal(t, "ROOM#room1", k.PartitionKey())
		assert.True(t, strings.HasPrefix(k.SortKey(), "MSG#"))
		assert.NotEmpty(t, k.MessageID)

		other := NewMessageKey("room1")
		assert.NotEqual(t, k.MessageID, other.MessageID)
	})

	t.Run("room partition key matches member and message rows", func(t *testing.T) {
		assert.Equal(t, RoomPartitionKey("r"), MemberKey{RoomID: "r"}.PartitionKey())
		assert.Equal(t, RoomPartitionKey("r"), MessageKey{RoomID: "r"}.PartitionKey())
	})
}
