package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-research-agent/internal/repository/implementation"
	"ai-research-agent/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteCollection(t *testing.T) {
	assert.Equal(t, "research_notes/remote_work_and_urban_housing", NoteCollection("Remote Work and Urban Housing"))
}

func TestSaveNoteFormatsContent(t *testing.T) {
	store := NewNoteStoreService(memory.NewDocumentRepository()).(*noteStoreService)
	store.now = fixedClock(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC))

	doc, err := store.SaveNote(context.Background(), "Topic", "Grid Storage Options", "Batteries are cheaper.")
	require.NoError(t, err)

	assert.Equal(t, "grid_storage_options", doc.Key)
	assert.Equal(t, "# Grid Storage Options\n\n*Researched: 2024-03-05 14:07:09*\n\nBatteries are cheaper.", doc.Content)
}

func TestSaveNoteLastWriteWins(t *testing.T) {
	store := NewNoteStoreService(implementation.NewFileDocumentRepository(t.TempDir()))
	ctx := context.Background()

	_, err := store.SaveNote(ctx, "Topic", "Same subtopic", "first")
	require.NoError(t, err)
	_, err = store.SaveNote(ctx, "Topic", "Same subtopic", "second")
	require.NoError(t, err)

	notes, err := store.ListNotes(ctx, "Topic")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, strings.HasSuffix(notes[0].Content, "second"))
}

func TestSaveNoteConcurrentWritersSameKey(t *testing.T) {
	store := NewNoteStoreService(implementation.NewFileDocumentRepository(t.TempDir()))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.SaveNote(ctx, "Topic", "Shared", strings.Repeat("x", 1000))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	notes, err := store.ListNotes(ctx, "Topic")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, strings.HasSuffix(notes[0].Content, strings.Repeat("x", 1000)))
}

func TestClearNotesOnlyTouchesTopic(t *testing.T) {
	store := NewNoteStoreService(memory.NewDocumentRepository())
	ctx := context.Background()

	_, err := store.SaveNote(ctx, "First", "a", "one")
	require.NoError(t, err)
	_, err = store.SaveNote(ctx, "Second", "b", "two")
	require.NoError(t, err)

	require.NoError(t, store.ClearNotes(ctx, "First"))

	first, err := store.ListNotes(ctx, "First")
	require.NoError(t, err)
	assert.Empty(t, first)
	second, err := store.ListNotes(ctx, "Second")
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestSaveNoteRejectsEmptyKey(t *testing.T) {
	store := NewNoteStoreService(memory.NewDocumentRepository())
	_, err := store.SaveNote(context.Background(), "Topic", "", "content")
	assert.Error(t, err)
}
