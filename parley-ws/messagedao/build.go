package messagedao

import (
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/parley-chat/parley-go-chat/parley-ws/chatkey"
)

// Build creates a message DAO over the standard chat table for the given
// environment.
func Build(api dynamodbiface.DynamoDBAPI, env string) *DAO {
	return New(api, chatkey.TableName(env))
}
