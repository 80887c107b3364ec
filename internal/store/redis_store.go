package store

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/pkg/logger"
)

// RedisStore implements Store on top of Redis. Each collection lives
// in one hash: the field is the store-generated identity assigned on
// insert, the value is the document serialized as JSON. Lookups by the
// application-level id field scan the collection, which mirrors the
// find-one-by-field contract of a document store.
type RedisStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisStore creates a Redis-backed document store
func NewRedisStore(client *redis.Client, log *logger.Logger) *RedisStore {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &RedisStore{
		client: client,
		logger: log.WithComponent("redis-store"),
	}
}

func collectionKey(c Collection) string {
	return fmt.Sprintf("collection:%s", c.String())
}

// GetAll returns every document in the collection
func (s *RedisStore) GetAll(ctx context.Context, collection Collection) ([]Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	raw, err := s.client.HGetAll(ctx, collectionKey(collection)).Result()
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "get_all")
	}

	docs := make([]Document, 0, len(raw))
	for _, data := range raw {
		var doc Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, shared.WrapStoreError(err, collection.String(), "get_all")
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// GetByID returns the document whose id field equals id, or nil when
// none matches
func (s *RedisStore) GetByID(ctx context.Context, collection Collection, id string) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	_, doc, err := s.findByID(ctx, s.client, collection, id)
	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "get_by_id")
	}
	return doc, nil
}

// Add inserts the document and returns the store-generated identity
func (s *RedisStore) Add(ctx context.Context, collection Collection, doc Document) (InsertResult, error) {
	if !collection.IsValid() {
		return InsertResult{}, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return InsertResult{}, shared.WrapStoreError(err, collection.String(), "add")
	}

	identity := uuid.NewString()
	if err := s.client.HSet(ctx, collectionKey(collection), identity, string(data)).Err(); err != nil {
		return InsertResult{}, shared.WrapStoreError(err, collection.String(), "add")
	}

	s.logger.Debug("document inserted",
		zap.String("collection", collection.String()),
		zap.String("identity", identity),
	)

	return InsertResult{ID: identity}, nil
}

// Update merges the patch into the document matching id and returns
// the patch as supplied. A missing document is a no-op.
func (s *RedisStore) Update(ctx context.Context, collection Collection, id string, patch Document) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	key := collectionKey(collection)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		field, current, err := s.findByID(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if current == nil {
			// No matching document: set semantics make this a no-op.
			return nil
		}

		currentJSON, err := json.Marshal(current)
		if err != nil {
			return err
		}
		patchJSON, err := json.Marshal(patch)
		if err != nil {
			return err
		}

		merged, err := jsonpatch.MergePatch(currentJSON, patchJSON)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, string(merged))
			return nil
		})
		return err
	}, key)

	if err != nil {
		return nil, shared.WrapStoreError(err, collection.String(), "update")
	}

	return patch, nil
}

// Delete atomically finds and removes the document matching id,
// returning the removed document
func (s *RedisStore) Delete(ctx context.Context, collection Collection, id string) (Document, error) {
	if !collection.IsValid() {
		return nil, shared.ErrInvalidInputf("unknown collection: %s", collection)
	}

	key := collectionKey(collection)
	var removed Document

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		field, current, err := s.findByID(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if current == nil {
			return shared.ErrNotFoundf("no document with id %s in collection %s", id, collection)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, key, field)
			return nil
		})
		if err != nil {
			return err
		}

		removed = current
		return nil
	}, key)

	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapStoreError(err, collection.String(), "delete")
	}

	s.logger.Debug("document deleted",
		zap.String("collection", collection.String()),
		zap.String("id", id),
	)

	return removed, nil
}

// hashReader is the subset of redis commands findByID needs, satisfied
// by both *redis.Client and *redis.Tx
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// findByID scans the collection hash for the document whose id field
// equals id. It returns the hash field holding the document alongside
// the document itself, or ("", nil) when no document matches.
func (s *RedisStore) findByID(ctx context.Context, r hashReader, collection Collection, id string) (string, Document, error) {
	raw, err := r.HGetAll(ctx, collectionKey(collection)).Result()
	if err != nil {
		return "", nil, err
	}

	for field, data := range raw {
		var doc Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return "", nil, err
		}
		if docID, ok := doc.ID(); ok && docID == id {
			return field, doc, nil
		}
	}

	return "", nil, nil
}
