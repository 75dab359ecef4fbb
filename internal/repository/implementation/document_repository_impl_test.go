package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/model"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/internal/repository/repositorytest"
	"ai-research-agent/pkg/database"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDocumentRepositoryConformance(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("TEST_DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}))

	repositorytest.RunConformance(t, func(t *testing.T) contract.DocumentRepository {
		require.NoError(t, db.Exec("DELETE FROM research_documents").Error)
		return NewDocumentRepository(db)
	})

	t.Run("overwrite reports the stored row id", func(t *testing.T) {
		require.NoError(t, db.Exec("DELETE FROM research_documents").Error)
		repo := NewDocumentRepository(db)
		ctx := context.Background()

		first := &entity.Document{Collection: "research_notes/topic", Key: "k", Content: "first"}
		require.NoError(t, repo.Put(ctx, first))
		second := &entity.Document{Collection: "research_notes/topic", Key: "k", Content: "second"}
		require.NoError(t, repo.Put(ctx, second))

		assert.Equal(t, first.Id, second.Id)
		stored, err := repo.FindOne(ctx, "research_notes/topic", "k")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, first.Id, stored.Id)
		assert.Equal(t, "second", stored.Content)
	})
}

func TestRedisDocumentRepositoryConformance(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: TEST_REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	repositorytest.RunConformance(t, func(t *testing.T) contract.DocumentRepository {
		require.NoError(t, rdb.FlushDB(context.Background()).Err())
		return NewRedisDocumentRepository(rdb)
	})
}
