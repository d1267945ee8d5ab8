package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoOptions configures the DynamoDB-backed store.
type DynamoOptions struct {
	Region string
	// Endpoint overrides the service endpoint, for DynamoDB Local.
	Endpoint string
	// AccessKeyID/SecretAccessKey are optional static credentials.
	// When empty the default AWS credential chain applies.
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoStore implements Store on DynamoDB.
// The underlying client is safe for concurrent use and shared across
// all in-flight requests.
type DynamoStore struct {
	client *dynamodb.Client
}

// NewDynamo creates a DynamoDB-backed store and verifies connectivity.
func NewDynamo(ctx context.Context, opts DynamoOptions) (*DynamoStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	s := &DynamoStore{client: client}

	// Verify connection
	if err := s.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach DynamoDB: %w", err)
	}

	return s, nil
}

// Client returns the underlying DynamoDB client.
// Use sparingly - prefer adding methods to DynamoStore.
func (s *DynamoStore) Client() *dynamodb.Client {
	return s.client
}

// Ping checks DynamoDB connectivity.
func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err
}

// GetItem returns the item with the given key, or nil if absent.
func (s *DynamoStore) GetItem(ctx context.Context, table string, key Key) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item from %s: %w", table, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// PutItem writes the full item.
func (s *DynamoStore) PutItem(ctx context.Context, table string, item Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item to %s: %w", table, err)
	}
	return nil
}

// UpdateItem sets the given attributes on an existing item and returns
// the post-update image. DynamoDB's native UpdateItem upserts, which
// would make a missing record indistinguishable from a present one on
// the follow-up read, so the write is conditioned on the key existing.
// A failed condition is reported as nil, nil, not an error: the caller
// detects the miss by re-reading the key.
func (s *DynamoStore) UpdateItem(ctx context.Context, table string, key Key, set Item) (Item, error) {
	var keyAttr string
	for name := range key {
		keyAttr = name
	}

	update := expression.UpdateBuilder{}
	for name, value := range set {
		update = update.Set(expression.Name(name), expression.Value(value))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(keyAttr))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, nil
		}
		return nil, fmt.Errorf("update item in %s: %w", table, err)
	}
	return out.Attributes, nil
}

// DeleteItem removes the item with the given key. Deleting an absent
// key succeeds.
func (s *DynamoStore) DeleteItem(ctx context.Context, table string, key Key) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("delete item from %s: %w", table, err)
	}
	return nil
}

// Query returns items whose index key equals keyValue, ordered by the
// index sort key. A zero limit follows LastEvaluatedKey until the full
// matching set is retrieved.
func (s *DynamoStore) Query(ctx context.Context, table, index, keyAttr string, keyValue types.AttributeValue, descending bool, limit int32) ([]Item, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyAttr).Equal(expression.Value(keyValue))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!descending),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	var items []Item
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query %s on %s: %w", index, table, err)
		}
		for _, item := range out.Items {
			items = append(items, Item(item))
		}
		if limit > 0 || len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

// Scan returns items matching all equality filters, in no particular
// order. A zero limit follows LastEvaluatedKey until the full table is
// retrieved.
func (s *DynamoStore) Scan(ctx context.Context, table string, filters Item, limit int32) ([]Item, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
	}

	if len(filters) > 0 {
		var cond expression.ConditionBuilder
		first := true
		for name, value := range filters {
			eq := expression.Name(name).Equal(expression.Value(value))
			if first {
				cond = eq
				first = false
			} else {
				cond = cond.And(eq)
			}
		}
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("build filter expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	var items []Item
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		for _, item := range out.Items {
			items = append(items, Item(item))
		}
		if limit > 0 || len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}
