package contract

import (
	"context"

	"ai-research-agent/internal/entity"
)

// DocumentRepository is the document store collaborator. Put is create-or-overwrite on
// (Collection, Key); ListAll returns documents ordered by key.
type DocumentRepository interface {
	Put(ctx context.Context, doc *entity.Document) error
	ListAll(ctx context.Context, collection string) ([]*entity.Document, error)
	FindOne(ctx context.Context, collection, key string) (*entity.Document, error)
	DeleteCollection(ctx context.Context, collection string) error

	// Locate returns a human-readable location for a stored document (a path for the file
	// backend, "collection/key" elsewhere).
	Locate(collection, key string) string
}
