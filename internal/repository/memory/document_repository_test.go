package memory

import (
	"context"
	"testing"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepositoryConformance(t *testing.T) {
	repositorytest.RunConformance(t, func(t *testing.T) contract.DocumentRepository {
		return NewDocumentRepository()
	})
}

func TestListAllReturnsCopies(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "c", Key: "k", Content: "original"}))

	docs, err := repo.ListAll(ctx, "c")
	require.NoError(t, err)
	docs[0].Content = "mutated"

	doc, err := repo.FindOne(ctx, "c", "k")
	require.NoError(t, err)
	assert.Equal(t, "original", doc.Content)
	assert.NotNil(t, doc.UpdatedAt)
	assert.False(t, doc.CreatedAt.IsZero())
}
