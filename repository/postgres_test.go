package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-aid-platform/db"
	"ad-aid-platform/models"
)

// openTestDB connects to TEST_DATABASE_URL, skipping when it is unset
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, db.Settings{URL: url})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx, conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPostgresTemplateLifecycle(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewTemplateRepository(conn)
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	dims := "1080 x 1920"
	created, err := repo.Create(ctx, &models.Template{ID: id, Name: "n", App: "a", Category: "c", Dimensions: &dims})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	_, err = repo.Create(ctx, &models.Template{ID: id, Name: "n", App: "a", Category: "c"})
	assert.ErrorIs(t, err, models.ErrConflict)

	name := "renamed"
	updated, err := repo.Update(ctx, id, &models.TemplateUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "a", updated.App)

	previous, err := repo.SetMaskPath(ctx, id, "/static/masks/x.png")
	require.NoError(t, err)
	assert.Nil(t, previous)
	previous, err = repo.SetMaskPath(ctx, id, "/static/masks/x.jpg")
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, "/static/masks/x.png", *previous)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.SetMaskPath(ctx, id, "/static/masks/x.png")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresWorkflowCompareAndSwap(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewWorkflowRepository(conn)
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	now := time.Now()
	_, err := repo.Create(ctx, &models.Workflow{ID: id, Name: "w", Content: json.RawMessage(`{"v":1}`), Version: 1, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	const racers = 10
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateContentIfVersion(ctx, id, 1, models.WorkflowContentUpdate{Content: json.RawMessage(`{"v":2}`), UpdatedAt: time.Now()})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, models.ErrVersionConflict)
	}
	assert.Equal(t, 1, wins, "exactly one writer wins a given version")

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.JSONEq(t, `{"v":2}`, string(stored.Content))

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.UpdateContentIfVersion(ctx, id, 2, models.WorkflowContentUpdate{Content: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresWorkflowUpdateMetadata(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	repo := NewWorkflowRepository(conn)
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	name := "renamed"
	_, err := repo.UpdateMetadata(ctx, id, &models.WorkflowUpdateRequest{Name: &name}, time.Now())
	assert.ErrorIs(t, err, models.ErrNotFound)

	now := time.Now()
	_, err = repo.Create(ctx, &models.Workflow{ID: id, Name: "w", Content: json.RawMessage(`{"v":1}`), Version: 1, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	thumbnail := "/static/thumbs/t.png"
	updated, err := repo.UpdateMetadata(ctx, id, &models.WorkflowUpdateRequest{ThumbnailPath: &thumbnail}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "w", updated.Name)
	require.NotNil(t, updated.ThumbnailPath)
	assert.Equal(t, thumbnail, *updated.ThumbnailPath)
	assert.Equal(t, 1, updated.Version)
}
