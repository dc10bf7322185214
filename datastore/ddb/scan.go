/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/flagstore/storagemodels"
)

// All pages through the store's partition and returns every override.
func (d *DynamodbDataStore) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	options := d.scan
	progress := storagemodels.ScanProgress{StartTime: time.Now()}

	reportProgress := func() {
		if options.ProgressHandler != nil {
			options.ProgressHandler(progress)
		}
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: d.partitionKey()},
		},
		Limit: aws.Int32(options.PageSize),
	}

	result := make(map[string]storagemodels.Value)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, retries, err := d.queryWithRetry(ctx, input, options)
		progress.Retries += retries
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		progress.PagesProcessed++

		for _, raw := range out.Items {
			var item flagItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item %v: %w", raw["SK"], err)
			}
			result[flagFromItem(item)] = item.Value
			progress.ItemsProcessed++
		}

		reportProgress()

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	progress.Done = true
	reportProgress()
	return result, nil
}

// queryWithRetry executes a query, retrying throttling and server errors with
// a linear backoff. It returns how many retries were spent.
func (d *DynamodbDataStore) queryWithRetry(
	ctx context.Context,
	input *dynamodb.QueryInput,
	options storagemodels.ScanOptions,
) (*dynamodb.QueryOutput, int, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt, err
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, attempt, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, attempt, err
		}

		// Don't sleep after last attempt
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, options.MaxRetries, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}
