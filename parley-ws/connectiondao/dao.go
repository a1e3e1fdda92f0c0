package connectiondao

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/savaki/ddb"
)

// DAO owns the Connection rows of the chat table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new connections DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Connection{}),
		api:       api,
		tableName: tableName,
	}
}

// Put stores a connection record. The write is an upsert; registering the
// same connection twice is not an error, last write wins.
func (d *DAO) Put(ctx context.Context, conn Connection) error {
	if err := d.table.Put(conn).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to store connection %v: %w", conn.ConnectionID(), err)
	}
	return nil
}

// Get retrieves a connection record by ID.
func (d *DAO) Get(ctx context.Context, connectionID string) (*Connection, error) {
	key := chatkey.ConnectionKey{ConnID: connectionID}

	var conn Connection
	if err := d.table.Get(key.PartitionKey()).Range(key.SortKey()).ScanWithContext(ctx, &conn); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, fmt.Errorf("connection %v not found", connectionID)
		}
		return nil, fmt.Errorf("failed to get connection %v: %w", connectionID, err)
	}
	return &conn, nil
}

// Delete removes a connection record by ID. Deleting an absent row succeeds.
func (d *DAO) Delete(ctx context.Context, connectionID string) error {
	key := chatkey.ConnectionKey{ConnID: connectionID}
	if err := d.table.Delete(key.PartitionKey()).Range(key.SortKey()).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to delete connection %v: %w", connectionID, err)
	}
	return nil
}
