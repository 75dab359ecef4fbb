package mapper

import (
	"fmt"
	"time"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]string
	if len(d.Metadata) > 0 {
		metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			metadata[k] = fmt.Sprint(v)
		}
	}

	return &entity.Document{
		Id:         d.Id,
		Collection: d.Collection,
		Key:        d.Key,
		Content:    d.Content,
		Metadata:   metadata,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var metadata datatypes.JSONMap
	if len(d.Metadata) > 0 {
		metadata = make(datatypes.JSONMap, len(d.Metadata))
		for k, v := range d.Metadata {
			metadata[k] = v
		}
	}

	return &model.Document{
		Id:         d.Id,
		Collection: d.Collection,
		Key:        d.Key,
		Content:    d.Content,
		Metadata:   metadata,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
