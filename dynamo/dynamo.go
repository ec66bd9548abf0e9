// Package dynamo provides a DynamoDB connection for the identity store.
//
// Each insert is a conditional PutItem that fails when an item with the same
// partition key already exists, giving the identity column the uniqueness
// guarantee a SQL UNIQUE constraint would.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/identitystore/store"
)

// PutItemAPI is the subset of *dynamodb.Client used by Conn.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Conn inserts rows as DynamoDB items.
type Conn struct {
	client PutItemAPI
	keys   map[string]string
}

// New creates a Conn. keys maps each table name to its partition key
// attribute, which must be the identity column of the store using it.
func New(client PutItemAPI, keys map[string]string) *Conn {
	k := make(map[string]string, len(keys))
	for table, attr := range keys {
		k[table] = attr
	}
	return &Conn{
		client: client,
		keys:   k,
	}
}

// LoadClient creates a DynamoDB client from the default AWS configuration
// chain. An empty profile uses the default profile.
func LoadClient(ctx context.Context, profile string) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// Insert puts row into table unless an item with the same key exists.
// A failed condition is reported as store.ConnError with an integrity
// constraint violation state.
func (c *Conn) Insert(ctx context.Context, table string, row store.Row) error {
	keyAttr, ok := c.keys[table]
	if !ok {
		return fmt.Errorf("dynamo: no key attribute configured for table %q", table)
	}
	if _, ok := row[keyAttr]; !ok {
		return fmt.Errorf("dynamo: row for table %q is missing key attribute %q", table, keyAttr)
	}

	item, err := attributevalue.MarshalMap(map[string]any(row))
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": keyAttr,
		},
	})
	return mapPutError(err)
}

// mapPutError maps DynamoDB PutItem errors.
func mapPutError(err error) error {
	if err == nil {
		return nil
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return store.ConstraintViolation(err)
	}

	return err
}

var _ store.Conn = (*Conn)(nil)
