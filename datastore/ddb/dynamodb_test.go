/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/recordkit/datastore"
	"github.com/suparena/recordkit/datastore/testmodels"
	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/registry"
	"github.com/suparena/recordkit/stmtcache"
	"github.com/suparena/recordkit/storagemodels"
)

var _ datastore.DataStore[testmodels.Book] = (*Store[testmodels.Book, *testmodels.Book])(nil)

func init() {
	if _, err := registry.Register[testmodels.Author](); err != nil {
		panic(err)
	}
	registry.RegisterKeyMap[testmodels.Book](map[string]string{
		"PK":     "AUTHOR#{author_id}",
		"SK":     "BOOK#{number}",
		"GSI1PK": "TITLE#{title}",
	})
}

func TestExpandMacros(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]any
		want     string
		wantErr  bool
	}{
		{"static", "PROFILE", nil, "PROFILE", false},
		{"single", "USER#{id}", map[string]any{"id": int64(42)}, "USER#42", false},
		{"pointer", "AUTHOR#{author_id}", map[string]any{"author_id": testmodels.Int(7)}, "AUTHOR#7", false},
		{"several", "{a}-{b}", map[string]any{"a": "x", "b": true}, "x-true", false},
		{"missing column", "USER#{id}", map[string]any{}, "", true},
		{"null value", "AUTHOR#{author_id}", map[string]any{"author_id": (*int64)(nil)}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandMacros(map[string]string{"PK": tt.template}, tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got["PK"] != tt.want {
				t.Errorf("expandMacros() = %q, want %q", got["PK"], tt.want)
			}
		})
	}
}

func TestStoreWithoutKeyMap(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("id")
	store, err := New[testmodels.RatingSystem](fake, "records")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	created := strfmt.DateTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	rs := &testmodels.RatingSystem{
		ID:          "TTOakville",
		Name:        "Oakville Table Tennis Ranking System",
		Description: "Club ladder",
		CreatedAt:   &created,
	}
	if err := store.Save(ctx, rs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	item := fake.items[fake.key(map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "TTOakville"}})]
	if et, ok := item[EntityTypeAttribute].(*types.AttributeValueMemberS); !ok || et.Value != "RatingSystem" {
		t.Fatalf("expected EntityType attribute, got %#v", item[EntityTypeAttribute])
	}

	found, err := store.Find(ctx, "TTOakville")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Name != rs.Name || found.CreatedAt == nil || found.CreatedAt.String() != created.String() {
		t.Fatalf("unexpected rating system %s", identity.Describe(found))
	}
	if !identity.Equal(found, rs) || identity.Hash(found) != identity.Hash(rs) {
		t.Fatal("loaded rating system should equal the saved one")
	}
	if fake.count("GetItem") != 1 {
		t.Errorf("primary key lookups should use GetItem, got %d calls", fake.count("GetItem"))
	}

	if _, err := store.Find(ctx, "missing"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreWithKeyMap(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("PK", "SK")
	store, err := New[testmodels.Book](fake, "records")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	book := testmodels.NewBook(1, 2, "Refactoring")
	if err := store.Save(ctx, book); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !book.Persisted() {
		t.Fatal("Save should mark the book persisted")
	}

	var item map[string]types.AttributeValue
	for _, it := range fake.items {
		item = it
	}
	for attr, want := range map[string]string{"PK": "AUTHOR#1", "SK": "BOOK#2", "GSI1PK": "TITLE#Refactoring"} {
		got, ok := item[attr].(*types.AttributeValueMemberS)
		if !ok || got.Value != want {
			t.Errorf("%s = %#v, want %q", attr, item[attr], want)
		}
	}

	a, err := store.Find(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	b, err := store.FindBy(ctx, storagemodels.Lookup{"title": "Refactoring"})
	if err != nil {
		t.Fatalf("FindBy failed: %v", err)
	}
	if !identity.Equal(a, b) || !identity.Equal(a, book) {
		t.Fatal("lookups of the same row must be equal")
	}
	if *b.AuthorID != 1 || *b.Number != 2 {
		t.Fatalf("unexpected book %s", identity.Describe(b))
	}
	if fake.count("GetItem") != 1 || fake.count("Scan") != 1 {
		t.Errorf("expected one GetItem and one Scan, got %v", fake.calls)
	}
	if store.Plans().Size() != 2 {
		t.Errorf("expected two lookup plans, got %d", store.Plans().Size())
	}

	if err := store.Delete(ctx, a); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Find(ctx, 1, 2); !errors.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, a); !errors.IsNotFound(err) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

func TestStorePreparedStatements(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("id")
	store, err := New[testmodels.Author](fake, "records", WithPreparedStatements(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, a := range []*testmodels.Author{{ID: 5, Name: "Fowler"}, {ID: 6, Name: "Beck"}} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		found, err := store.Find(ctx, int32(6))
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if found.Name != "Beck" {
			t.Fatalf("unexpected author %s", identity.Describe(found))
		}
	}
	if fake.count("ExecuteStatement") != 3 || fake.count("GetItem") != 0 {
		t.Errorf("prepared lookups should run statements, got %v", fake.calls)
	}

	m, _ := identity.ModelFor[testmodels.Author]()
	if store.Plans().BucketSize(m, true) != 1 || store.Plans().BucketSize(m, false) != 0 {
		t.Errorf("expected a single prepared plan, got %d", store.Plans().Size())
	}

	p, err := store.buildPlan(stmtcache.NewKey(m, []string{"name"}, true))
	if err != nil {
		t.Fatalf("buildPlan failed: %v", err)
	}
	want := `SELECT * FROM "records" WHERE "EntityType" = ? AND "name" = ?`
	if p.statement != want {
		t.Errorf("statement = %q, want %q", p.statement, want)
	}
}

func TestStoreScanPaging(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("id")
	fake.pageSize = 1
	store, err := New[testmodels.Author](fake, "records")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i, name := range []string{"Fowler", "Beck", "Evans", "Kerievsky"} {
		if err := store.Save(ctx, &testmodels.Author{ID: int64(i + 1), Name: name}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	found, err := store.FindBy(ctx, storagemodels.Lookup{"name": "Kerievsky"})
	if err != nil {
		t.Fatalf("FindBy failed: %v", err)
	}
	if found.ID != 4 {
		t.Fatalf("unexpected author %s", identity.Describe(found))
	}
	if fake.count("Scan") != 4 {
		t.Errorf("expected the scan to page through four items, got %d calls", fake.count("Scan"))
	}

	if _, err := store.FindBy(ctx, storagemodels.Lookup{"name": "Nobody"}); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreRejectsBadKeyMaps(t *testing.T) {
	registry.RegisterKeyMap[testmodels.Topic](map[string]string{"PK": "TOPIC#{title}"})
	registry.RegisterKeyMap[testmodels.Post](map[string]string{"PK": "POST#{slug}"})

	if _, err := New[testmodels.Topic](newFakeDynamo("PK"), "records"); !errors.IsInvalidModel(err) {
		t.Errorf("key attributes built from non-key columns should be rejected, got %v", err)
	}
	if _, err := New[testmodels.Post](newFakeDynamo("PK"), "records"); !errors.IsInvalidModel(err) {
		t.Errorf("macros naming unknown columns should be rejected, got %v", err)
	} else if !strings.Contains(err.Error(), "slug") {
		t.Errorf("error should name the column: %v", err)
	}
}

func TestStoreInvalidInput(t *testing.T) {
	ctx := context.Background()
	store, err := New[testmodels.Book](newFakeDynamo("PK", "SK"), "records")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := store.Find(ctx, 1); !errors.IsValidationError(err) {
		t.Errorf("expected validation error for a short key, got %v", err)
	}
	if err := store.Save(ctx, &testmodels.Book{Title: "keyless"}); err == nil {
		t.Error("saving without a key should fail")
	}
	if err := store.Delete(ctx, testmodels.NewBook(3, 3, "")); err == nil {
		t.Error("deleting an unsaved book should fail")
	}
}

func TestDecodeEntity(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo("id")
	store, err := New[testmodels.Author](fake, "records")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	author := &testmodels.Author{ID: 11, Name: "Evans"}
	if err := store.Save(ctx, author); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	item := fake.items[fake.key(map[string]types.AttributeValue{"id": &types.AttributeValueMemberN{Value: "11"}})]
	e, err := DecodeEntity(item)
	if err != nil {
		t.Fatalf("DecodeEntity failed: %v", err)
	}
	loaded, ok := e.(*testmodels.Author)
	if !ok {
		t.Fatalf("expected *testmodels.Author, got %T", e)
	}
	if loaded.Name != "Evans" || !identity.Equal(loaded, author) {
		t.Fatalf("unexpected author %s", identity.Describe(loaded))
	}

	delete(item, EntityTypeAttribute)
	if _, err := DecodeEntity(item); !errors.IsValidationError(err) {
		t.Fatalf("expected validation error without EntityType, got %v", err)
	}
}
