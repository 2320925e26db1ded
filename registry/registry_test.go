/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/suparena/recordkit/datastore/testmodels"
	"github.com/suparena/recordkit/identity"
)

func TestRegisterAndBuild(t *testing.T) {
	name, err := Register[testmodels.Manuscript]()
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if name != "Manuscript" {
		t.Fatalf("expected model name Manuscript, got %q", name)
	}

	e, err := NewEntity("Manuscript")
	if err != nil {
		t.Fatalf("NewEntity failed: %v", err)
	}
	if _, ok := e.(*testmodels.Manuscript); !ok {
		t.Fatalf("expected *Manuscript, got %T", e)
	}
	if e.Identity().Persisted() {
		t.Fatal("factories build unsaved entities")
	}
}

func TestRegisterTypeDuplicatePanics(t *testing.T) {
	RegisterType("Widget", func() identity.Entity { return &testmodels.Post{} })

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	RegisterType("Widget", func() identity.Entity { return &testmodels.Post{} })
}

func TestUnknownType(t *testing.T) {
	if _, err := NewEntity("Nope"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestKeyMaps(t *testing.T) {
	keyMap := map[string]string{"PK": "AUTHOR#{author_id}", "SK": "BOOK#{number}"}
	RegisterKeyMap[testmodels.Book](keyMap)

	got, ok := GetKeyMap[testmodels.Book]()
	if !ok || got["PK"] != keyMap["PK"] {
		t.Fatalf("GetKeyMap() = %v, %v", got, ok)
	}

	m, err := identity.ModelFor[testmodels.Book]()
	if err != nil {
		t.Fatalf("ModelFor failed: %v", err)
	}
	if _, ok := KeyMapFor(m); !ok {
		t.Fatal("KeyMapFor should find the map registered for Book")
	}
	if _, ok := GetKeyMap[testmodels.Author](); ok {
		t.Fatal("Author has no key map")
	}
}
