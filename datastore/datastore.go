/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/recordkit/storagemodels"
)

type DataStore[T any] interface {
	// Find loads the row with the given primary key values, in key column order.
	Find(ctx context.Context, key ...any) (*T, error)

	FindBy(ctx context.Context, lookup storagemodels.Lookup) (*T, error)

	// Save writes the entity and marks it persisted.
	Save(ctx context.Context, entity *T) error

	Delete(ctx context.Context, entity *T) error

	Plans() storagemodels.PlanStats
}
