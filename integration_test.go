//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordkit_test

import (
	"context"
	"testing"

	"github.com/suparena/recordkit"
	"github.com/suparena/recordkit/config"
	"github.com/suparena/recordkit/datastore/testmodels"
	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/registry"
)

func init() {
	registry.RegisterKeyMap[testmodels.Book](map[string]string{
		"PK": "AUTHOR#{author_id}",
		"SK": "BOOK#{number}",
	})
}

func TestIntegrationDynamoDBSession(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Skipf("configuration incomplete: %v", err)
	}
	if cfg.Backend != config.BackendDynamoDB {
		t.Skip("RECORDKIT_BACKEND is not dynamodb")
	}

	ctx := context.Background()
	session, err := recordkit.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	books, err := recordkit.StoreFor[testmodels.Book](ctx, session)
	if err != nil {
		t.Fatalf("StoreFor failed: %v", err)
	}

	saved := testmodels.NewBook(901, 1, "Integration")
	if err := books.Save(ctx, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	defer books.Delete(ctx, saved)

	a, err := books.Find(ctx, 901, 1)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	b, err := books.Find(ctx, 901, 1)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !identity.Equal(a, b) || identity.Hash(a) != identity.Hash(b) {
		t.Fatalf("loads of one item differ: %s vs %s", identity.Describe(a), identity.Describe(b))
	}
	if books.Plans().Size() != 1 {
		t.Errorf("expected one plan, got %d", books.Plans().Size())
	}

	if _, err := books.Find(ctx, 901, 999); !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
