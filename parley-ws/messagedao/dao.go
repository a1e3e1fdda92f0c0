package messagedao

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
	"github.com/savaki/ddb"
)

// DAO owns the Message rows of the chat table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new message DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Message{}),
		api:       api,
		tableName: tableName,
	}
}

// Append writes a message to the room's history under a freshly generated
// message ID and returns the stored row.
func (d *DAO) Append(ctx context.Context, roomID, userID, content string, timestamp int64) (Message, error) {
	key := chatkey.NewMessageKey(roomID)
	m := Message{
		PK:        key.PartitionKey(),
		SK:        key.SortKey(),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		Timestamp: timestamp,
	}
	if err := d.table.Put(m).RunWithContext(ctx); err != nil {
		return Message{}, fmt.Errorf("failed to append message to room %v: %w", roomID, err)
	}
	return m, nil
}

// ListHistory returns every message of the room in store-native key order.
// Key order is not chronological; callers needing chronological order sort by
// the Timestamp attribute.
func (d *DAO) ListHistory(ctx context.Context, roomID string) ([]Message, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(chatkey.RoomPartitionKey(roomID))},
			":sk": {S: aws.String(chatkey.MessagePrefix)},
		},
	}

	output, err := d.api.QueryWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of room %v: %w", roomID, err)
	}

	var messages []Message
	if err := dynamodbattribute.UnmarshalListOfMaps(output.Items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history of room %v: %w", roomID, err)
	}
	return messages, nil
}
