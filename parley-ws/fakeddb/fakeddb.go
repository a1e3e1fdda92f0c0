// Package fakeddb provides an in-memory stand-in for the subset of the
// DynamoDB API the chat table uses, plus a recording Poster. Both exist so
// handler and DAO tests can run without a local DynamoDB.
package fakeddb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// DB implements the PutItem/GetItem/DeleteItem/Query corner of
// dynamodbiface.DynamoDBAPI over a single in-memory table keyed by (PK, SK).
// All other methods panic via the embedded nil interface.
type DB struct {
	dynamodbiface.DynamoDBAPI

	mu    sync.Mutex
	items map[string]map[string]map[string]*dynamodb.AttributeValue

	// Fail, when set, makes every call return the error, simulating a store
	// outage.
	Fail error
}

func New() *DB {
	return &DB{
		items: map[string]map[string]map[string]*dynamodb.AttributeValue{},
	}
}

func stringValue(av *dynamodb.AttributeValue) string {
	if av == nil || av.S == nil {
		return ""
	}
	return *av.S
}

func (db *DB) PutItemWithContext(_ aws.Context, input *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.Fail != nil {
		return nil, db.Fail
	}

	pk := stringValue(input.Item["PK"])
	sk := stringValue(input.Item["SK"])
	if pk == "" || sk == "" {
		return nil, fmt.Errorf("fakeddb: item is missing PK or SK")
	}

	partition, ok := db.items[pk]
	if !ok {
		partition = map[string]map[string]*dynamodb.AttributeValue{}
		db.items[pk] = partition
	}
	partition[sk] = input.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (db *DB) GetItemWithContext(_ aws.Context, input *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.Fail != nil {
		return nil, db.Fail
	}

	pk := stringValue(input.Key["PK"])
	sk := stringValue(input.Key["SK"])

	item := db.items[pk][sk]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (db *DB) DeleteItemWithContext(_ aws.Context, input *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.Fail != nil {
		return nil, db.Fail
	}

	pk := stringValue(input.Key["PK"])
	sk := stringValue(input.Key["SK"])

	// Deleting an absent row succeeds, as in DynamoDB.
	delete(db.items[pk], sk)

	return &dynamodb.DeleteItemOutput{}, nil
}

// QueryWithContext supports the one query shape the chat table uses,
// `PK = :pk AND begins_with(SK, :sk)`, returning items in sort-key order.
func (db *DB) QueryWithContext(_ aws.Context, input *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.Fail != nil {
		return nil, db.Fail
	}

	pk := stringValue(input.ExpressionAttributeValues[":pk"])
	prefix := stringValue(input.ExpressionAttributeValues[":sk"])

	var sortKeys []string
	for sk := range db.items[pk] {
		if len(sk) >= len(prefix) && sk[:len(prefix)] == prefix {
			sortKeys = append(sortKeys, sk)
		}
	}
	sort.Strings(sortKeys)

	items := make([]map[string]*dynamodb.AttributeValue, 0, len(sortKeys))
	for _, sk := range sortKeys {
		items = append(items, db.items[pk][sk])
	}

	count := int64(len(items))
	return &dynamodb.QueryOutput{Items: items, Count: &count}, nil
}

// Item returns the stored attributes at (pk, sk), or nil.
func (db *DB) Item(pk, sk string) map[string]*dynamodb.AttributeValue {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.items[pk][sk]
}

// PartitionCount reports how many rows under pk carry the sort-key prefix.
func (db *DB) PartitionCount(pk, skPrefix string) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for sk := range db.items[pk] {
		if len(sk) >= len(skPrefix) && sk[:len(skPrefix)] == skPrefix {
			n++
		}
	}
	return n
}
