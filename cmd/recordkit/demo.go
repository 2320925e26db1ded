/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/suparena/recordkit"
	"github.com/suparena/recordkit/config"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
	"github.com/suparena/recordkit/storagemodels"
)

// Book is keyed by author and number.
type Book struct {
	identity.Record
	AuthorID *int64 `db:"author_id,pk"`
	Number   *int64 `db:"number,pk"`
	Title    string `db:"title"`
}

func (Book) TableName() string { return "demo_books" }

// Topic instances share a generated placeholder key until saved.
type Topic struct {
	identity.Record
	ID    string `db:"id,pk"`
	Title string `db:"title"`
}

func (Topic) DefaultKey() (any, error) {
	return uuid.NewString(), nil
}

func newDemoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through record identity and lookup plan caching",
		Long: `demo saves a book on the configured backend, loads it back through
different lookups and prints how the loaded records compare.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func runDemo(ctx context.Context, out io.Writer, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	session, err := recordkit.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	books, err := recordkit.StoreFor[Book](ctx, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "backend: %s (prepared statements: %t)\n", cfg.Backend, cfg.PreparedStatements)

	first := newBook(1, 2, "Refactoring")
	second := newBook(1, 2, "Refactoring")
	fmt.Fprintf(out, "unsaved %s equals itself: %t\n", identity.Describe(first), identity.Equal(first, first))
	fmt.Fprintf(out, "two unsaved books with one key are equal: %t\n", identity.Equal(first, second))

	if err := books.Save(ctx, first); err != nil {
		return err
	}
	a, err := books.Find(ctx, 1, 2)
	if err != nil {
		return err
	}
	b, err := books.Find(ctx, int32(1), uint(2))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "two loads of %s are equal: %t, same hash: %t\n",
		identity.Describe(a), identity.Equal(a, b), identity.Hash(a) == identity.Hash(b))
	fmt.Fprintf(out, "saved book equals its unsaved twin: %t\n", identity.Equal(first, second))

	set := identity.NewSet()
	for _, e := range []identity.Entity{second, newBook(3, 4, "Draft"), a, b, second} {
		set.Add(e)
	}
	fmt.Fprintf(out, "distinct records in set: %d\n", set.Len())

	t1, err := identity.New[Topic]()
	if err != nil {
		return err
	}
	t2, err := identity.New[Topic]()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "new topics share default key: %t, are equal: %t\n", t1.ID == t2.ID, identity.Equal(t1, t2))

	if _, err := books.FindBy(ctx, storagemodels.Lookup{"title": "Refactoring"}); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := books.Find(ctx, 1, 2); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "cached lookup plans: %d\n", books.Plans().Size())

	logging.L().Info().Str("backend", cfg.Backend).Int("plans", books.Plans().Size()).Msg("demo finished")
	return books.Delete(ctx, a)
}

func newBook(authorID, number int64, title string) *Book {
	return &Book{AuthorID: &authorID, Number: &number, Title: title}
}
