package memberdao

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/savaki/ddb"
)

// DAO owns the Membership rows of the chat table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
	now       func() time.Time
}

// New creates a new membership DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Membership{}),
		api:       api,
		tableName: tableName,
		now:       time.Now,
	}
}

// Join records connID as a member of roomID, stamping joinedAt with the
// current time. Joining twice updates the timestamp but cannot duplicate the
// row, the sort key is the identity.
func (d *DAO) Join(ctx context.Context, roomID, connID, userID string) (Membership, error) {
	m := NewMembership(roomID, connID, userID, d.now().UnixMilli())
	if err := d.table.Put(m).RunWithContext(ctx); err != nil {
		return Membership{}, fmt.Errorf("failed to join connection %v to room %v: %w", connID, roomID, err)
	}
	return m, nil
}

// ListMembers returns every membership row of the room in store-native order.
// An empty room yields an empty slice, not an error.
func (d *DAO) ListMembers(ctx context.Context, roomID string) ([]Membership, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(chatkey.RoomPartitionKey(roomID))},
			":sk": {S: aws.String(chatkey.MemberPrefix)},
		},
	}

	output, err := d.api.QueryWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of room %v: %w", roomID, err)
	}

	var members []Membership
	if err := dynamodbattribute.UnmarshalListOfMaps(output.Items, &members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal members of room %v: %w", roomID, err)
	}
	return members, nil
}
