package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "research:documents:"

// RedisDocumentRepository keeps each collection in one hash, field = document key.
type RedisDocumentRepository struct {
	rdb *redis.Client
}

type redisDocument struct {
	Id        uuid.UUID         `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

func NewRedisDocumentRepository(rdb *redis.Client) contract.DocumentRepository {
	return &RedisDocumentRepository{rdb: rdb}
}

func (r *RedisDocumentRepository) hashKey(collection string) string {
	return redisKeyPrefix + collection
}

func (r *RedisDocumentRepository) Put(ctx context.Context, doc *entity.Document) error {
	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = &now

	payload, err := json.Marshal(redisDocument{
		Id:        doc.Id,
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := r.rdb.HSet(ctx, r.hashKey(doc.Collection), doc.Key, payload).Err(); err != nil {
		return fmt.Errorf("put document %s/%s: %w", doc.Collection, doc.Key, err)
	}
	return nil
}

func (r *RedisDocumentRepository) ListAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	fields, err := r.rdb.HGetAll(ctx, r.hashKey(collection)).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]*entity.Document, 0, len(keys))
	for _, k := range keys {
		doc, err := r.decode(collection, k, fields[k])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *RedisDocumentRepository) FindOne(ctx context.Context, collection, key string) (*entity.Document, error) {
	raw, err := r.rdb.HGet(ctx, r.hashKey(collection), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return r.decode(collection, key, raw)
}

func (r *RedisDocumentRepository) decode(collection, key, raw string) (*entity.Document, error) {
	var stored redisDocument
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return &entity.Document{
		Id:         stored.Id,
		Collection: collection,
		Key:        key,
		Content:    stored.Content,
		Metadata:   stored.Metadata,
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  stored.UpdatedAt,
	}, nil
}

func (r *RedisDocumentRepository) DeleteCollection(ctx context.Context, collection string) error {
	return r.rdb.Del(ctx, r.hashKey(collection)).Err()
}

func (r *RedisDocumentRepository) Locate(collection, key string) string {
	return "redis://" + r.hashKey(collection) + "#" + key
}
