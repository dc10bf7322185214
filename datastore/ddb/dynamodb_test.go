/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/flagstore/datastore"
	flagerrors "github.com/suparena/flagstore/errors"
	"github.com/suparena/flagstore/storagemodels"
)

var (
	_ datastore.ReadWriteStore = (*DynamodbDataStore)(nil)
	_ datastore.ReadOnlyStore  = (*DynamodbDataStore)(nil)
)

// fakeDynamo keeps items in memory, keyed by PK and SK.
type fakeDynamo struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	queryErrs  []error
	queryCalls int
	deleteErr  error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func attrS(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(key map[string]types.AttributeValue) string {
	return attrS(key["PK"]) + "|" + attrS(key["SK"])
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sdk.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemKey(in.Item)] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.items, itemKey(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++

	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}

	pk := attrS(in.ExpressionAttributeValues[":pk"])
	var keys []string
	for k := range f.items {
		if strings.HasPrefix(k, pk+"|") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := itemKey(in.ExclusiveStartKey)
		for start < len(keys) && keys[start] <= after {
			start++
		}
	}

	limit := len(keys)
	if in.Limit != nil {
		limit = int(*in.Limit)
	}

	out := &sdk.QueryOutput{}
	for i := start; i < len(keys) && len(out.Items) < limit; i++ {
		out.Items = append(out.Items, f.items[keys[i]])
	}
	if start+len(out.Items) < len(keys) {
		last := out.Items[len(out.Items)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": last["PK"], "SK": last["SK"]}
	}
	return out, nil
}

func TestDynamoDBSetGetRemove(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New("remote", "flags", fake)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	got, err := store.Get(ctx, "beta")
	require.NoError(t, err)
	assert.True(t, got.IsNull(), "missing item reads as null")

	require.NoError(t, store.Set(ctx, "beta", storagemodels.Bool(true)))
	require.NoError(t, store.Set(ctx, "theme", storagemodels.String("dark")))

	raw := fake.items["FLAGSTORE#remote|FLAG#beta"]
	require.NotNil(t, raw)
	assert.Equal(t, "beta", attrS(raw["Flag"]))
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, raw["Value"])
	assert.True(t, strings.HasPrefix(attrS(raw["UpdatedAt"]), "2025-03-01T12:00:00"))

	got, err = store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, storagemodels.String("dark"), got)

	require.NoError(t, store.Remove(ctx, "beta"))
	got, err = store.Get(ctx, "beta")
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	// Removing a missing item is fine
	require.NoError(t, store.Remove(ctx, "beta"))
}

func TestDynamoDBStoresSharePartitionedTable(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	a := New("a", "flags", fake)
	b := New("b", "flags", fake)

	require.NoError(t, a.Set(ctx, "x", storagemodels.Bool(true)))

	got, err := b.Get(ctx, "x")
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	all, err := b.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDynamoDBAllPages(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()

	var reports []storagemodels.ScanProgress
	store := New("remote", "flags", fake,
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.ScanProgress) {
			reports = append(reports, p)
		}),
	)

	for i, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.Set(ctx, name, storagemodels.Bool(i%2 == 0)))
	}

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, storagemodels.Bool(true), all["a"])
	assert.Equal(t, storagemodels.Bool(false), all["b"])
	assert.Equal(t, 3, fake.queryCalls)

	require.NotEmpty(t, reports)
	final := reports[len(reports)-1]
	assert.True(t, final.Done)
	assert.Equal(t, int64(5), final.ItemsProcessed)
	assert.Equal(t, 3, final.PagesProcessed)
}

func TestDynamoDBAllRetriesThrottling(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	fake.queryErrs = []error{&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}}

	store := New("remote", "flags", fake,
		storagemodels.WithRetryBackoff(time.Millisecond),
	)
	require.NoError(t, store.Set(ctx, "a", storagemodels.String("x")))

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, storagemodels.String("x"), all["a"])
	assert.Equal(t, 2, fake.queryCalls)
}

func TestDynamoDBAllStopsOnPermanentError(t *testing.T) {
	fake := newFakeDynamo()
	permanent := errors.New("access denied")
	fake.queryErrs = []error{permanent}

	store := New("remote", "flags", fake, storagemodels.WithRetryBackoff(time.Millisecond))
	_, err := store.All(context.Background())
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, fake.queryCalls)
}

func TestDynamoDBAllGivesUpAfterMaxRetries(t *testing.T) {
	fake := newFakeDynamo()
	fake.queryErrs = []error{
		&types.InternalServerError{},
		&types.InternalServerError{},
		&types.InternalServerError{},
	}

	store := New("remote", "flags", fake,
		storagemodels.WithMaxRetries(2),
		storagemodels.WithRetryBackoff(time.Millisecond),
	)
	_, err := store.All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, fake.queryCalls)
}

func TestConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aws.env")
	require.NoError(t, os.WriteFile(path, []byte("AWS_REGION=eu-west-1\nAWS_DDB_TABLE=flags\n"), 0644))

	// godotenv.Load never overrides variables that are already set, so make
	// sure the test variables start out unset and are cleaned up afterwards.
	for _, k := range []string{"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "AWS_REGION", "AWS_DDB_TABLE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := ConfigFromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "flags", cfg.TableName)
	assert.Empty(t, cfg.AccessKey)
}

func TestConfigFromEnvRequiresTable(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_DDB_TABLE", "")

	_, err := ConfigFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err, "explicitly named env files must exist")

	_, err = ConfigFromEnv(writeEmptyEnv(t))
	assert.True(t, flagerrors.IsValidationError(err))
}

func writeEmptyEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	return path
}

func TestDynamoDBRemoveWrapsDeleteError(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New("remote", "flags", fake)
	require.NoError(t, store.Set(ctx, "beta", storagemodels.Bool(true)))

	denied := errors.New("access denied")
	fake.deleteErr = denied
	err := store.Remove(ctx, "beta")
	require.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "failed to delete item in DynamoDB")

	got, err := store.Get(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Bool(true), got)
}
