package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const keySeparator = "\x00"

// DocumentRepository is a process-local document store. Documents never expire.
type DocumentRepository struct {
	cache *cache.Cache
}

func NewDocumentRepository() contract.DocumentRepository {
	return &DocumentRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func cacheKey(collection, key string) string {
	return collection + keySeparator + key
}

func (r *DocumentRepository) Put(ctx context.Context, doc *entity.Document) error {
	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = &now

	stored := *doc
	r.cache.Set(cacheKey(doc.Collection, doc.Key), &stored, cache.NoExpiration)
	return nil
}

func (r *DocumentRepository) ListAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	prefix := collection + keySeparator
	docs := []*entity.Document{}
	for k, item := range r.cache.Items() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		doc := *item.Object.(*entity.Document)
		docs = append(docs, &doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

func (r *DocumentRepository) FindOne(ctx context.Context, collection, key string) (*entity.Document, error) {
	if x, found := r.cache.Get(cacheKey(collection, key)); found {
		doc := *x.(*entity.Document)
		return &doc, nil
	}
	return nil, nil
}

func (r *DocumentRepository) DeleteCollection(ctx context.Context, collection string) error {
	prefix := collection + keySeparator
	for k := range r.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			r.cache.Delete(k)
		}
	}
	return nil
}

func (r *DocumentRepository) Locate(collection, key string) string {
	return "memory://" + collection + "/" + key
}
