// Package repositorytest holds behaviour checks shared by every DocumentRepository backend.
package repositorytest

import (
	"context"
	"testing"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConformance exercises the create-or-overwrite and enumeration semantics of a backend.
// newRepo must return an empty store scoped to the test.
func RunConformance(t *testing.T, newRepo func(t *testing.T) contract.DocumentRepository) {
	ctx := context.Background()

	t.Run("empty collection lists nothing", func(t *testing.T) {
		repo := newRepo(t)
		docs, err := repo.ListAll(ctx, "research_notes/nothing_here")
		require.NoError(t, err)
		assert.Empty(t, docs)

		doc, err := repo.FindOne(ctx, "research_notes/nothing_here", "missing")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("put then list ordered by key", func(t *testing.T) {
		repo := newRepo(t)
		for _, key := range []string{"b_note", "a_note", "c_note"} {
			require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/topic", Key: key, Content: "content of " + key}))
		}

		docs, err := repo.ListAll(ctx, "research_notes/topic")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "a_note", docs[0].Key)
		assert.Equal(t, "b_note", docs[1].Key)
		assert.Equal(t, "c_note", docs[2].Key)
		assert.Equal(t, "content of a_note", docs[0].Content)
		assert.Equal(t, "research_notes/topic", docs[0].Collection)
	})

	t.Run("dot-prefixed keys are listed", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/runtimes", Key: ".net_adoption_in_enterprises", Content: "dotnet"}))
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/runtimes", Key: "java_adoption_in_enterprises", Content: "java"}))

		docs, err := repo.ListAll(ctx, "research_notes/runtimes")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		keys := []string{docs[0].Key, docs[1].Key}
		assert.ElementsMatch(t, []string{".net_adoption_in_enterprises", "java_adoption_in_enterprises"}, keys)

		doc, err := repo.FindOne(ctx, "research_notes/runtimes", ".net_adoption_in_enterprises")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "dotnet", doc.Content)
	})

	t.Run("last write wins", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/topic", Key: "k", Content: "first"}))
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/topic", Key: "k", Content: "second"}))

		docs, err := repo.ListAll(ctx, "research_notes/topic")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "second", docs[0].Content)

		doc, err := repo.FindOne(ctx, "research_notes/topic", "k")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "second", doc.Content)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/one", Key: "k", Content: "1"}))
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/one_more", Key: "k", Content: "2"}))
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "reports", Key: "r", Content: "3"}))

		docs, err := repo.ListAll(ctx, "research_notes/one")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "1", docs[0].Content)
	})

	t.Run("delete collection", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/gone", Key: "x", Content: "x"}))
		require.NoError(t, repo.Put(ctx, &entity.Document{Collection: "research_notes/kept", Key: "y", Content: "y"}))

		require.NoError(t, repo.DeleteCollection(ctx, "research_notes/gone"))
		require.NoError(t, repo.DeleteCollection(ctx, "research_notes/never_existed"))

		gone, err := repo.ListAll(ctx, "research_notes/gone")
		require.NoError(t, err)
		assert.Empty(t, gone)

		kept, err := repo.ListAll(ctx, "research_notes/kept")
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})

	t.Run("locate names the document", func(t *testing.T) {
		repo := newRepo(t)
		assert.Contains(t, repo.Locate("reports", "ai_report_20260101_000000"), "ai_report_20260101_000000")
	})
}
