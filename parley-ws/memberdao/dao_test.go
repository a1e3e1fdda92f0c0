package memberdao

import (
	"context"
	"testing"
	"time"

	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/parley-chat/parley-go-chat/parley-ws/fakeddb"
	"github.com/tj/assert"
)

func TestDAO(t *testing.T) {
	var (
		ctx = context.Background()
		db  = fakeddb.New()
		dao = New(db, chatkey.TableName("test"))
	)

	t.Run("empty room lists no members", func(t *testing.T) {
		members, err := dao.ListMembers(ctx, "room1")
		assert.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("re-join overwrites joinedAt without duplicating", func(t *testing.T) {
		dao.now = func() time.Time { return time.UnixMilli(1000) }
		first, err := dao.Join(ctx, "room1", "conn1", "user1")
		assert.NoError(t, err)
		assert.EqualValues(t, 1000, first.JoinedAt)

		dao.now = func() time.Time { return time.UnixMilli(2000) }
		_, err = dao.Join(ctx, "room1", "conn1", "user1")
		assert.NoError(t, err)

		members, err := dao.ListMembers(ctx, "room1")
		assert.NoError(t, err)
		assert.Len(t, members, 1)
		assert.EqualValues(t, 2000, members[0].JoinedAt)
		assert.Equal(t, "conn1", members[0].ConnectionID())
	})

	t.Run("membership is scoped to the room", func(t *testing.T) {
		_, err := dao.Join(ctx, "room2", "conn2", "user2")
		assert.NoError(t, err)

		members, err := dao.ListMembers(ctx, "room1")
		assert.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("optional userId may be empty", func(t *testing.T) {
		m, err := dao.Join(ctx, "room3", "conn3", "")
		assert.NoError(t, err)
		assert.Empty(t, m.UserID)
		assert.Equal(t, "conn3", m.ConnectionID())
	})
}
