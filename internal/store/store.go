package store

import (
	"context"
)

// Collection identifies a named partition of the document store.
// The set is closed: only the collections declared below are valid.
type Collection string

const (
	Users    Collection = "users"
	Revenues Collection = "revenues"
	Expenses Collection = "expenses"
)

// String returns the store-level collection name
func (c Collection) String() string {
	return string(c)
}

// IsValid checks if the collection is one of the declared collections
func (c Collection) IsValid() bool {
	switch c {
	case Users, Revenues, Expenses:
		return true
	}
	return false
}

// Document is one record: an arbitrary mapping of field name to value.
// Documents are addressed by their application-level "id" field, which
// is distinct from the identity the store assigns on insert.
type Document map[string]interface{}

// ID returns the document's application-level id field, if present
// as a string
func (d Document) ID() (string, bool) {
	v, ok := d["id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// InsertResult carries the store-generated identity of an inserted
// document
type InsertResult struct {
	ID string `json:"id"`
}

// Store provides uniform CRUD over the document store, parameterized
// by collection.
type Store interface {
	// GetAll returns every document in the collection, in store-native
	// order. An empty collection yields an empty slice, not an error.
	GetAll(ctx context.Context, collection Collection) ([]Document, error)

	// GetByID returns the document whose id field equals id, or nil
	// (with nil error) when none matches. Behavior is undefined when
	// more than one document shares an id.
	GetByID(ctx context.Context, collection Collection, id string) (Document, error)

	// Add inserts the document unmodified and returns the
	// store-generated identity.
	Add(ctx context.Context, collection Collection, doc Document) (InsertResult, error)

	// Update merges patch fields into the document matching id,
	// overwriting on conflict and leaving absent fields untouched.
	// It returns the patch as supplied, never the merged document.
	// A missing document is a no-op, not an error.
	Update(ctx context.Context, collection Collection, id string, patch Document) (Document, error)

	// Delete atomically finds and removes the document matching id and
	// returns it. A missing document is a not-found error.
	Delete(ctx context.Context, collection Collection, id string) (Document, error)
}
