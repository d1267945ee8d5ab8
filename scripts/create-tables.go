package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableSpec describes a table and its secondary indexes to provision.
type tableSpec struct {
	name    string
	keyAttr string
	indexes []indexSpec
}

type indexSpec struct {
	name     string
	keyAttr  string
	sortAttr string
}

func main() {
	var (
		region       = flag.String("region", envOr("AWS_REGION", "ap-northeast-1"), "AWS region")
		endpoint     = flag.String("endpoint", os.Getenv("DYNAMODB_ENDPOINT_URL"), "DynamoDB endpoint override for local development")
		usersTable   = flag.String("users-table", envOr("DYNAMODB_USERS_TABLE", "metrichub-users"), "Users table name")
		metricsTable = flag.String("metrics-table", envOr("DYNAMODB_METRICS_TABLE", "metrichub-metrics"), "Metrics table name")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := newClient(ctx, *region, *endpoint)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configure client:", err)
		os.Exit(1)
	}

	specs := []tableSpec{
		{
			name:    *usersTable,
			keyAttr: "user_id",
			indexes: []indexSpec{
				{name: "username-index", keyAttr: "username"},
				{name: "email-index", keyAttr: "email"},
			},
		},
		{
			name:    *metricsTable,
			keyAttr: "metric_id",
			indexes: []indexSpec{
				{name: "device-timestamp-index", keyAttr: "device_id", sortAttr: "timestamp"},
			},
		},
	}

	for _, spec := range specs {
		if err := createTable(ctx, client, spec); err != nil {
			fmt.Fprintf(os.Stderr, "create table %s: %v\n", spec.name, err)
			os.Exit(1)
		}
		fmt.Println("table ready:", spec.name)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	// Local DynamoDB accepts any static credentials.
	if endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func createTable(ctx context.Context, client *dynamodb.Client, spec tableSpec) error {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(spec.keyAttr), AttributeType: types.ScalarAttributeTypeS},
	}

	var gsis []types.GlobalSecondaryIndex
	for _, idx := range spec.indexes {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(idx.keyAttr),
			AttributeType: types.ScalarAttributeTypeS,
		})

		keySchema := []types.KeySchemaElement{
			{AttributeName: aws.String(idx.keyAttr), KeyType: types.KeyTypeHash},
		}
		if idx.sortAttr != "" {
			attrs = append(attrs, types.AttributeDefinition{
				AttributeName: aws.String(idx.sortAttr),
				AttributeType: types.ScalarAttributeTypeS,
			})
			keySchema = append(keySchema, types.KeySchemaElement{
				AttributeName: aws.String(idx.sortAttr),
				KeyType:       types.KeyTypeRange,
			})
		}

		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(idx.name),
			KeySchema: keySchema,
			Projection: &types.Projection{
				ProjectionType: types.ProjectionTypeAll,
			},
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(spec.name),
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(spec.keyAttr), KeyType: types.KeyTypeHash},
		},
		BillingMode:            types.BillingModePayPerRequest,
		GlobalSecondaryIndexes: gsis,
	}

	if _, err := client.CreateTable(ctx, input); err != nil {
		var exists *types.ResourceInUseException
		if errors.As(err, &exists) {
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(spec.name),
	}, 30*time.Second)
}
