//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"

	"github.com/suparena/recordkit/datastore/testmodels"
	"github.com/suparena/recordkit/identity"
)

func getRatingSystemStore(t *testing.T, prepared bool) *Store[testmodels.RatingSystem, *testmodels.RatingSystem] {
	t.Helper()
	if err := godotenv.Load(); err != nil {
		t.Log("No .env file found, proceeding with environment variables")
	}

	table := os.Getenv("AWS_DDB_TABLE")
	if table == "" {
		t.Skip("AWS_DDB_TABLE not set")
	}

	ctx := context.Background()
	client, err := NewDynamoDBClient(ctx,
		os.Getenv("AWS_ACCESS_KEY"),
		os.Getenv("AWS_SECRET_KEY"),
		os.Getenv("AWS_REGION"),
		os.Getenv("AWS_DDB_ENDPOINT"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	store, err := New[testmodels.RatingSystem](client, table, WithPreparedStatements(prepared))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestIntegrationRatingSystemLifecycle(t *testing.T) {
	for _, prepared := range []bool{false, true} {
		store := getRatingSystemStore(t, prepared)
		ctx := context.Background()

		ct := strfmt.DateTime(time.Now())
		rs := &testmodels.RatingSystem{
			ID:          "TTOakville",
			Name:        "Oakville Table Tennis Ranking System (test)",
			Description: "This is a test rating system for Oakville Table Tennis Club",
			CreatedAt:   &ct,
		}
		if err := store.Save(ctx, rs); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		found, err := store.Find(ctx, "TTOakville")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if !identity.Equal(found, rs) {
			t.Errorf("loaded %s does not equal saved %s", identity.Describe(found), identity.Describe(rs))
		}
		t.Logf("Rating System: %s", identity.Describe(found))

		if err := store.Delete(ctx, found); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
}
