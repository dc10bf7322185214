/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"
	flagerrors "github.com/suparena/flagstore/errors"
	"github.com/suparena/flagstore/storagemodels"
)

const (
	partitionPrefix = "FLAGSTORE#"
	sortPrefix      = "FLAG#"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// flagItem is the persisted shape of one override.
type flagItem struct {
	PK        string
	SK        string
	Flag      string
	Value     storagemodels.Value
	UpdatedAt string
}

// DynamodbDataStore stores flag overrides in a DynamoDB table. All flags of
// one store share a partition, so the store can also list its contents and
// serve as a hydration source.
type DynamodbDataStore struct {
	client    API
	tableName string
	name      string
	scan      storagemodels.ScanOptions
	now       func() time.Time
}

// Config holds what is needed to reach the table.
type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	TableName string
}

// ConfigFromEnv reads AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION and
// AWS_DDB_TABLE. The given .env files are loaded first; with no files a
// ./.env is loaded when present. Variables already set win over .env values.
func ConfigFromEnv(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("failed to load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_KEY"),
		Region:    os.Getenv("AWS_REGION"),
		TableName: os.Getenv("AWS_DDB_TABLE"),
	}
	if cfg.Region == "" {
		return cfg, flagerrors.NewValidationError("AWS_REGION", "must be set")
	}
	if cfg.TableName == "" {
		return cfg, flagerrors.NewValidationError("AWS_DDB_TABLE", "must be set")
	}
	return cfg, nil
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when an access key is given, otherwise the default credential chain.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(awsRegion),
	}
	if awsAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	slog.Debug("DynamoDB client initialized", "region", awsRegion)
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a store named name on top of an existing client.
func New(name, tableName string, client API, opts ...storagemodels.ScanOption) *DynamodbDataStore {
	scan := storagemodels.DefaultScanOptions()
	for _, opt := range opts {
		opt(&scan)
	}
	return &DynamodbDataStore{
		client:    client,
		tableName: tableName,
		name:      name,
		scan:      scan,
		now:       time.Now,
	}
}

// NewDynamodbDataStore creates a client from cfg and constructs a store on it.
func NewDynamodbDataStore(ctx context.Context, name string, cfg Config, opts ...storagemodels.ScanOption) (*DynamodbDataStore, error) {
	client, err := NewDynamoDBClient(ctx, cfg.AccessKey, cfg.SecretKey, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return New(name, cfg.TableName, client, opts...), nil
}

func (d *DynamodbDataStore) Name() string { return d.name }

func (d *DynamodbDataStore) partitionKey() string {
	return partitionPrefix + d.name
}

func (d *DynamodbDataStore) key(flag string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: d.partitionKey()},
		"SK": &types.AttributeValueMemberS{Value: sortPrefix + flag},
	}
}

// Get reads one override. A missing item is a null value.
func (d *DynamodbDataStore) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.key(key),
	})
	if err != nil {
		return storagemodels.Null(), fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return storagemodels.Null(), nil
	}

	var item flagItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return storagemodels.Null(), fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item.Value, nil
}

// Set writes one override.
func (d *DynamodbDataStore) Set(ctx context.Context, key string, value storagemodels.Value) error {
	av, err := attributevalue.MarshalMap(flagItem{
		PK:        d.partitionKey(),
		SK:        sortPrefix + key,
		Flag:      key,
		Value:     value,
		UpdatedAt: strfmt.DateTime(d.now()).String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Remove deletes one override. Deleting a missing item is not an error.
func (d *DynamodbDataStore) Remove(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.key(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

func flagFromItem(item flagItem) string {
	if item.Flag != "" {
		return item.Flag
	}
	return strings.TrimPrefix(item.SK, sortPrefix)
}
