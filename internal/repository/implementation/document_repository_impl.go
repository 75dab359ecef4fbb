package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/mapper"
	"ai-research-agent/internal/model"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Put upserts on the (collection, key) unique index so a rewrite replaces content in place.
func (r *DocumentRepositoryImpl) Put(ctx context.Context, doc *entity.Document) error {
	if doc.Id == uuid.Nil {
		doc.Id = uuid.New()
	}
	m := r.mapper.ToModel(doc)
	// an overwrite keeps the stored row id and created_at
	err := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "metadata", "updated_at"}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "created_at"}, {Name: "updated_at"}}},
	).Create(m).Error
	if err != nil {
		return fmt.Errorf("put document %s/%s: %w", doc.Collection, doc.Key, err)
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) ListAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByCollection{Collection: collection},
		specification.OrderBy{Field: "key"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, collection, key string) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByCollection{Collection: collection},
		specification.ByKey{Key: key},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) DeleteCollection(ctx context.Context, collection string) error {
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByCollection{Collection: collection})
	return query.Delete(&model.Document{}).Error
}

func (r *DocumentRepositoryImpl) Locate(collection, key string) string {
	return "postgres://" + model.Document{}.TableName() + "/" + collection + "/" + key
}
