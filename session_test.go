/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recordkit/config"
	"github.com/suparena/recordkit/datastore/testmodels"
	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
)

func TestSessionBackends(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		for _, prepared := range []bool{false, true} {
			cfg := config.Default()
			cfg.Backend = backend
			cfg.PreparedStatements = prepared

			s, err := Open(ctx, cfg)
			require.NoError(t, err)

			books, err := StoreFor[testmodels.Book](ctx, s)
			require.NoError(t, err)
			again, err := StoreFor[testmodels.Book](ctx, s)
			require.NoError(t, err)
			assert.Same(t, books, again, "%s: stores are created once per type", backend)

			saved := testmodels.NewBook(1, 2, "Refactoring")
			require.NoError(t, books.Save(ctx, saved))

			a, err := books.Find(ctx, 1, 2)
			require.NoError(t, err)
			b, err := books.Find(ctx, int64(1), int64(2))
			require.NoError(t, err)
			assert.True(t, identity.Equal(a, b))
			assert.True(t, identity.Equal(a, saved))
			assert.Equal(t, 1, books.Plans().Size())

			_, err = books.Find(ctx, 9, 9)
			assert.True(t, errors.IsNotFound(err))

			assert.Equal(t, []string{backend}, List[testmodels.Book](s.Stores()))
			require.NoError(t, s.Close())
		}
	}
}

func TestSessionSharedSQLitePlans(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.Default())
	require.NoError(t, err)
	defer s.Close()

	books, err := StoreFor[testmodels.Book](ctx, s)
	require.NoError(t, err)
	authors, err := StoreFor[testmodels.Author](ctx, s)
	require.NoError(t, err)

	author := &testmodels.Author{Name: "Fowler"}
	require.NoError(t, authors.Save(ctx, author))
	require.NoError(t, books.Save(ctx, testmodels.NewBook(author.ID, 1, "Refactoring")))

	_, err = authors.Find(ctx, author.ID)
	require.NoError(t, err)
	_, err = books.Find(ctx, author.ID, 1)
	require.NoError(t, err)

	plans := s.SQLitePlans()
	require.NotNil(t, plans)
	assert.Equal(t, 2, plans.Size())

	m, err := identity.ModelFor[testmodels.Author]()
	require.NoError(t, err)
	assert.Equal(t, 1, plans.BucketSize(m, false))
	assert.Equal(t, 0, plans.BucketSize(m, true))
}

func TestSessionCloseReleasesPlans(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.PreparedStatements = true
	s, err := Open(ctx, cfg)
	require.NoError(t, err)

	books, err := StoreFor[testmodels.Book](ctx, s)
	require.NoError(t, err)
	require.NoError(t, books.Save(ctx, testmodels.NewBook(1, 1, "Refactoring")))
	_, err = books.Find(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "postgres"
	_, err := Open(context.Background(), cfg)
	assert.True(t, errors.IsValidationError(err))
}
