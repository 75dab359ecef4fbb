package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_documents_collection_key,priority:1"`
	Key        string            `gorm:"type:varchar(255);not null;uniqueIndex:idx_documents_collection_key,priority:2"`
	Content    string            `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "research_documents"
}
