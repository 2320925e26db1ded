// Package testmodels holds the fixture entities shared by the recordkit tests.
package testmodels

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/recordkit/identity"
)

// Book has a composite primary key.
type Book struct {
	identity.Record
	AuthorID *int64 `db:"author_id,pk"`
	Number   *int64 `db:"number,pk"`
	Title    string `db:"title"`
}

// Manuscript declares the same key columns as Book.
type Manuscript struct {
	identity.Record
	AuthorID *int64 `db:"author_id,pk"`
	Number   *int64 `db:"number,pk"`
	Title    string `db:"title"`
}

type Author struct {
	identity.Record
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Topic instances start with a per-type default key until saved.
type Topic struct {
	identity.Record
	ID    string `db:"id,pk"`
	Title string `db:"title"`
}

func (Topic) DefaultKey() (any, error) {
	return uuid.NewString(), nil
}

// Shelf instances start on the archive's intake slot until saved.
type Shelf struct {
	identity.Record
	Room  string `db:"room,pk"`
	Slot  int64  `db:"slot,pk"`
	Label string `db:"label"`
}

func (Shelf) DefaultKey() (any, error) {
	return []any{"archive", 1}, nil
}

// Post replaces the default description.
type Post struct {
	identity.Record
	ID    int64  `db:"id,pk"`
	Title string `db:"title"`
	Body  string `db:"body"`
}

func (p *Post) Describe() string {
	return fmt.Sprintf("Post #%d %q", p.ID, p.Title)
}

type RatingSystem struct {
	identity.Record

	// Unique identifier for the rating system.
	ID string `db:"id,pk"`

	// Name of the rating system.
	Name string `db:"name"`

	// A description of the rating system.
	Description string `db:"description"`

	// site Url
	SiteURL string `db:"site_url"`

	// Timestamp when the rating system was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `db:"created_at"`
}

func (RatingSystem) TableName() string { return "rating_systems" }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// NewBook builds an unsaved Book.
func NewBook(authorID, number int64, title string) *Book {
	return &Book{AuthorID: Int(authorID), Number: Int(number), Title: title}
}
