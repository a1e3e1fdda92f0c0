package messagedao

import (
	"context"
	"testing"

	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/parley-chat/parley-go-chat/parley-ws/fakeddb"
	"github.com/parley-chat/parley-go-chat/parley-ws/memberdao"
	"github.com/tj/assert"
)

func TestDAO(t *testing.T) {
	var (
		ctx = context.Background()
		db  = fakeddb.New()
		dao = New(db, chatkey.TableName("test"))
	)

	t.Run("empty room has no history", func(t *testing.T) {
		history, err := dao.ListHistory(ctx, "room1")
		assert.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("append stores the row as given", func(t *testing.T) {
		m, err := dao.Append(ctx, "room1", "user1", "Hello", 1700000000123)
		assert.NoError(t, err)
		assert.Equal(t, "room1", m.RoomID)
		assert.Equal(t, "user1", m.UserID)
		assert.Equal(t, "Hello", m.Content)
		assert.EqualValues(t, 1700000000123, m.Timestamp)
		assert.NotEmpty(t, m.MessageID())

		history, err := dao.ListHistory(ctx, "room1")
		assert.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Equal(t, m, history[0])
	})

	t.Run("appends never collide", func(t *testing.T) {
		first, err := dao.Append(ctx, "room2", "user1", "same content", 1)
		assert.NoError(t, err)
		second, err := dao.Append(ctx, "room2", "user1", "same content", 1)
		assert.NoError(t, err)
		assert.NotEqual(t, first.MessageID(), second.MessageID())

		history, err := dao.ListHistory(ctx, "room2")
		assert.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("membership rows in the same partition stay out of history", func(t *testing.T) {
		members := memberdao.New(db, chatkey.TableName("test"))
		_, err := members.Join(ctx, "room1", "conn1", "user1")
		assert.NoError(t, err)

		history, err := dao.ListHistory(ctx, "room1")
		assert.NoError(t, err)
		assert.Len(t, history, 1)
	})
}
