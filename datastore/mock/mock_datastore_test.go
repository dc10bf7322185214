/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/datastore/mock"
	"github.com/suparena/flagstore/errors"
	"github.com/suparena/flagstore/storagemodels"
)

var (
	_ datastore.ReadWriteStore = (*mock.Store)(nil)
	_ datastore.ReadOnlyStore  = (*mock.Source)(nil)
)

func TestMockStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		store := mock.New("local")

		if err := store.Set(ctx, "beta", storagemodels.Bool(true)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		got, err := store.Get(ctx, "beta")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != storagemodels.Bool(true) {
			t.Fatalf("Retrieved value mismatch: %v", got)
		}

		if err := store.Remove(ctx, "beta"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if store.Has("beta") {
			t.Fatal("Expected beta to be removed")
		}

		got, _ = store.Get(ctx, "beta")
		if !got.IsNull() {
			t.Fatalf("Expected null after removal, got %v", got)
		}

		// Removing again is fine
		if err := store.Remove(ctx, "beta"); err != nil {
			t.Fatalf("Remove of missing key failed: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		store := mock.New("local")

		setErr := errors.NewStorageError("local", "set", "x", context.DeadlineExceeded)
		store.WithSetError(setErr)
		if err := store.Set(ctx, "x", storagemodels.String("v")); err != setErr {
			t.Fatalf("Expected set error, got: %v", err)
		}

		getErr := errors.NewNotFoundError("flag", "x")
		store.WithGetError(getErr)
		if _, err := store.Get(ctx, "x"); err != getErr {
			t.Fatalf("Expected get error, got: %v", err)
		}
	})

	t.Run("KeyError", func(t *testing.T) {
		store := mock.New("local")
		keyErr := errors.NewValidationError("a", "rejected")
		store.WithKeyError("a", keyErr)

		if err := store.Set(ctx, "a", storagemodels.Bool(true)); err != keyErr {
			t.Fatalf("Expected key error, got: %v", err)
		}
		if err := store.Set(ctx, "b", storagemodels.Bool(true)); err != nil {
			t.Fatalf("Set of other key failed: %v", err)
		}
		if store.Count() != 1 {
			t.Fatalf("Expected 1 entry, got %d", store.Count())
		}
	})

	t.Run("HelperMethods", func(t *testing.T) {
		store := mock.New("local")
		store.SetData(map[string]storagemodels.Value{
			"a": storagemodels.Bool(true),
			"b": storagemodels.String("x"),
		})

		data := store.GetData()
		data["c"] = storagemodels.Null()
		if store.Count() != 2 {
			t.Fatalf("GetData should return a copy, count is %d", store.Count())
		}

		store.Clear()
		if store.Count() != 0 {
			t.Fatalf("Expected empty store after Clear, got %d", store.Count())
		}
	})
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()

	src := mock.NewSource("seed", map[string]storagemodels.Value{
		"a": storagemodels.Bool(true),
	})

	all, err := src.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	all["b"] = storagemodels.Bool(false)

	again, _ := src.All(ctx)
	if len(again) != 1 {
		t.Fatalf("All should return a copy, got %v", again)
	}
	if src.Calls() != 2 {
		t.Fatalf("Expected 2 calls, got %d", src.Calls())
	}

	v, _ := src.Get(ctx, "a")
	if v != storagemodels.Bool(true) {
		t.Fatalf("Get mismatch: %v", v)
	}

	failing := mock.NewSource("broken", nil).WithAllError(errors.ErrStorageFailure)
	if _, err := failing.All(ctx); !errors.IsStorageFailure(err) {
		t.Fatalf("Expected storage failure, got %v", err)
	}
}
