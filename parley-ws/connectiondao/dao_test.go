package connectiondao

import (
	"context"
	"testing"

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

	t.Run("put then get", func(t *testing.T) {
		err := dao.Put(ctx, NewConnection("conn1", "user1", 1700000000000))
		assert.NoError(t, err)

		conn, err := dao.Get(ctx, "conn1")
		assert.NoError(t, err)
		assert.Equal(t, "conn1", conn.ConnectionID())
		assert.Equal(t, "user1", conn.UserID)
		assert.EqualValues(t, 1700000000000, conn.ConnectedAt)
	})

	t.Run("put is last-write-wins", func(t *testing.T) {
		err := dao.Put(ctx, NewConnection("conn1", "user2", 1700000001000))
		assert.NoError(t, err)

		conn, err := dao.Get(ctx, "conn1")
		assert.NoError(t, err)
		assert.Equal(t, "user2", conn.UserID)
		assert.EqualValues(t, 1700000001000, conn.ConnectedAt)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		err := dao.Delete(ctx, "conn1")
		assert.NoError(t, err)

		_, err = dao.Get(ctx, "conn1")
		assert.Error(t, err)
	})

	t.Run("delete tolerates absent rows", func(t *testing.T) {
		err := dao.Delete(ctx, "never-connected")
		assert.NoError(t, err)
	})
}
