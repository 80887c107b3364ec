package store

import (
	"context"
	"encoding/json"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"

	"github.com/finbook-app/finbook/internal/domain/shared"
)

// MemoryStore implements Store with an in-process map. It mirrors the
// Redis store's contract exactly and backs service tests and local
// development runs.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection][]memEntry
}

type memEntry struct {
	identity string
	data     []byte
}

// NewMemoryStore creates an empty in-memory document store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[Collection][]memEntry),
	}
}

// GetAll returns every document in the collection
func (s *MemoryStore) GetAll(ctx context.Context, collection Collection) ([]Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.collections[collection]
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		var doc Document
		if err := json.Unmarshal(e.data, &doc); err != nil {
			return nil, shared.WrapStoreError(err, collection.String(), "get_all")
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// GetByID returns the document whose id field equals id, or nil when
// none matches
func (s *MemoryStore) GetByID(ctx context.Context, collection Collection, id string) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, doc, err := s.findByID(collection, id)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "get_by_id")
	}
	return doc, nil
}

// Add inserts the document and returns the store-generated identity
func (s *MemoryStore) Add(ctx context.Context, collection Collection, doc Document) (InsertResult, error) {
	if !collection.IsValid() {
		return InsertResult{}, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return InsertResult{}, shared.WrapStoreError(err, collection.String(), "add")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identity := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], memEntry{
		identity: identity,
		data:     data,
	})

	return InsertResult{ID: identity}, nil
}

// Update merges the patch into the document matching id and returns
// the patch as supplied. A missing document is a no-op.
func (s *MemoryStore) Update(ctx context.Context, collection Collection, id string, patch Document) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, current, err := s.findByID(collection, id)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "update")
	}
	if current == nil {
		return patch, nil
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "update")
	}

	merged, err := jsonpatch.MergePatch(s.collections[collection][idx].data, patchJSON)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "update")
	}

	s.collections[collection][idx].data = merged
	return patch, nil
}

// Delete atomically finds and removes the document matching id,
// returning the removed document
func (s *MemoryStore) Delete(ctx context.Context, collection Collection, id string) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, current, err := s.findByID(collection, id)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "delete")
	}
	if current == nil {
		return nil, shared.ErrNotFoundf("no document with id %s in collection %s", id, collection)
	}

	entries := s.collections[collection]
	s.collections[collection] = append(entries[:idx], entries[idx+1:]...)

	return current, nil
}

// findByID scans the collection for the document whose id field equals
// id. Callers must hold the lock. It returns the entry index, or
// (-1, nil) when no document matches.
func (s *MemoryStore) findByID(collection Collection, id string) (int, Document, error) {
	for i, e := range s.collections[collection] {
		var doc Document
		if err := json.Unmarshal(e.data, &doc); err != nil {
			return -1, nil, err
		}
		if docID, ok := doc.ID(); ok && docID == id {
			return i, doc, nil
		}
	}
	return -1, nil, nil
}
