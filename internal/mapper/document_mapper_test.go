package mapper

import (
	"testing"
	"time"

	"ai-research-agent/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocumentMapperRoundTrip(t *testing.T) {
	m := NewDocumentMapper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &entity.Document{
		Id:         uuid.New(),
		Collection: "reports",
		Key:        "ai_report_20260301_120000",
		Content:    "# Research Report: AI",
		Metadata:   map[string]string{"topic": "AI"},
		CreatedAt:  now,
	}

	model := m.ToModel(doc)
	assert.Equal(t, "AI", model.Metadata["topic"])
	assert.True(t, model.UpdatedAt.IsZero())

	back := m.ToEntity(model)
	assert.Equal(t, doc, back)
}

func TestDocumentMapperNil(t *testing.T) {
	m := NewDocumentMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
	assert.Empty(t, m.ToEntities(nil))
}
