package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
	"ad-aid-platform/storage"
)

func newTestBinder(t *testing.T, templateIDs ...string) (*AssetBinder, *repository.MemoryTemplateRepository, *storage.MemoryStore) {
	t.Helper()
	repo := repository.NewMemoryTemplateRepository()
	for _, id := range templateIDs {
		_, err := repo.Create(context.Background(), &models.Template{ID: id, Name: id, App: "app", Category: "cat"})
		require.NoError(t, err)
	}
	store := storage.NewMemoryStore("/static")
	return NewAssetBinder(repo, store), repo, store
}

func TestMaskObjectPath(t *testing.T) {
	assert.Equal(t, "masks/tpl-1_mask.png", MaskObjectPath("tpl-1", "upload.png"))
	assert.Equal(t, "masks/tpl-1_mask.PNG", MaskObjectPath("tpl-1", `C:\Users\me\MASK.PNG`))
	assert.Equal(t, "masks/tpl-1_mask", MaskObjectPath("tpl-1", "mask"))
}

func TestBindStoresMaskAndUpdatesTemplate(t *testing.T) {
	ctx := context.Background()
	binder, repo, store := newTestBinder(t, "tpl-1")

	maskPath, err := binder.Bind(ctx, "tpl-1", []byte("first"), "a.png")
	require.NoError(t, err)
	assert.Equal(t, "/static/masks/tpl-1_mask.png", maskPath)

	stored, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	require.NotNil(t, stored.MaskPath)
	assert.Equal(t, maskPath, *stored.MaskPath)

	data, err := store.Read(ctx, "masks/tpl-1_mask.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)
}

func TestBindSameExtensionOverwrites(t *testing.T) {
	ctx := context.Background()
	binder, _, store := newTestBinder(t, "tpl-1")

	first, err := binder.Bind(ctx, "tpl-1", []byte("first"), "a.png")
	require.NoError(t, err)
	second, err := binder.Bind(ctx, "tpl-1", []byte("second"), "b.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{"masks/tpl-1_mask.png"}, store.Paths())
	data, err := store.Read(ctx, "masks/tpl-1_mask.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestBindExtensionChangeRemovesOldFile(t *testing.T) {
	ctx := context.Background()
	binder, repo, store := newTestBinder(t, "tpl-1")

	_, err := binder.Bind(ctx, "tpl-1", []byte("png"), "a.png")
	require.NoError(t, err)
	maskPath, err := binder.Bind(ctx, "tpl-1", []byte("jpg"), "a.jpg")
	require.NoError(t, err)

	assert.Equal(t, "/static/masks/tpl-1_mask.jpg", maskPath)
	assert.ElementsMatch(t, []string{"masks/tpl-1_mask.jpg"}, store.Paths())

	stored, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, maskPath, *stored.MaskPath)
}

// caseInsensitiveStore folds object paths the way macOS and Windows filesystems do
type caseInsensitiveStore struct {
	*storage.MemoryStore
}

func (s caseInsensitiveStore) Write(ctx context.Context, p string, data []byte) error {
	return s.MemoryStore.Write(ctx, strings.ToLower(p), data)
}

func (s caseInsensitiveStore) Read(ctx context.Context, p string) ([]byte, error) {
	return s.MemoryStore.Read(ctx, strings.ToLower(p))
}

func (s caseInsensitiveStore) Delete(ctx context.Context, p string) error {
	return s.MemoryStore.Delete(ctx, strings.ToLower(p))
}

func TestBindCaseOnlyExtensionChangeKeepsFile(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTemplateRepository()
	_, err := repo.Create(ctx, &models.Template{ID: "tpl-1", Name: "n", App: "app", Category: "cat"})
	require.NoError(t, err)
	store := caseInsensitiveStore{storage.NewMemoryStore("/static")}
	binder := NewAssetBinder(repo, store)

	_, err = binder.Bind(ctx, "tpl-1", []byte("first"), "a.png")
	require.NoError(t, err)
	maskPath, err := binder.Bind(ctx, "tpl-1", []byte("second"), "A.PNG")
	require.NoError(t, err)
	assert.Equal(t, "/static/masks/tpl-1_mask.PNG", maskPath)

	data, err := store.Read(ctx, "masks/tpl-1_mask.PNG")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestBindLeavesForeignPreviousPointer(t *testing.T) {
	ctx := context.Background()
	binder, repo, store := newTestBinder(t, "tpl-1")

	require.NoError(t, store.Write(ctx, "images/hero.png", []byte("keep")))
	external := "/static/images/hero.png"
	_, err := repo.SetMaskPath(ctx, "tpl-1", external)
	require.NoError(t, err)

	_, err = binder.Bind(ctx, "tpl-1", []byte("mask"), "m.png")
	require.NoError(t, err)

	_, err = store.Read(ctx, "images/hero.png")
	assert.NoError(t, err, "files outside the masks namespace are never removed")
}

func TestBindUnknownTemplate(t *testing.T) {
	binder, _, store := newTestBinder(t)

	_, err := binder.Bind(context.Background(), "missing", []byte("x"), "a.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, store.Writes(), "nothing is written for an unknown template")
}

func TestBindStorageFailureLeavesRecord(t *testing.T) {
	ctx := context.Background()
	binder, repo, store := newTestBinder(t, "tpl-1")

	_, err := binder.Bind(ctx, "tpl-1", []byte("ok"), "a.png")
	require.NoError(t, err)

	store.FailWrites = true
	_, err = binder.Bind(ctx, "tpl-1", []byte("lost"), "b.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStorageFailure)

	stored, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "/static/masks/tpl-1_mask.png", *stored.MaskPath)
}

func TestBindRejectsUnsafeTemplateID(t *testing.T) {
	ctx := context.Background()
	binder, _, store := newTestBinder(t, "../x", "a/b")

	for _, id := range []string{"../x", "a/b"} {
		_, err := binder.Bind(ctx, id, []byte("x"), "a.png")
		assert.ErrorIs(t, err, models.ErrValidation, id)
	}
	assert.Zero(t, store.Writes())
}

// deletingTemplateRepo deletes the template between the write and the pointer update
type deletingTemplateRepo struct {
	*repository.MemoryTemplateRepository
}

func (r *deletingTemplateRepo) SetMaskPath(ctx context.Context, id string, maskPath string) (*string, error) {
	if err := r.MemoryTemplateRepository.Delete(ctx, id); err != nil {
		return nil, err
	}
	return r.MemoryTemplateRepository.SetMaskPath(ctx, id, maskPath)
}

func TestBindConcurrentDeleteDoesNotResurrect(t *testing.T) {
	ctx := context.Background()
	inner := repository.NewMemoryTemplateRepository()
	_, err := inner.Create(ctx, &models.Template{ID: "tpl-1", Name: "n", App: "a", Category: "c"})
	require.NoError(t, err)
	store := storage.NewMemoryStore("/static")
	binder := NewAssetBinder(&deletingTemplateRepo{MemoryTemplateRepository: inner}, store)

	_, err = binder.Bind(ctx, "tpl-1", []byte("x"), "a.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = inner.GetByID(ctx, "tpl-1")
	assert.ErrorIs(t, err, models.ErrNotFound, "the template must stay deleted")
	assert.Empty(t, store.Paths(), "the orphaned mask is removed")
}

func TestBindConcurrentUploadsKeepPointerConsistent(t *testing.T) {
	ctx := context.Background()
	binder, repo, store := newTestBinder(t, "tpl-1")

	exts := []string{".png", ".jpg", ".webp"}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := binder.Bind(ctx, "tpl-1", []byte(fmt.Sprintf("upload-%d", i)), "m"+exts[i%len(exts)])
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	require.NotNil(t, stored.MaskPath)

	objectPath, ok := store.PathFromPublicURL(*stored.MaskPath)
	require.True(t, ok)
	_, err = store.Read(ctx, objectPath)
	require.NoError(t, err, "the pointer always names a stored object")
	assert.Equal(t, []string{objectPath}, store.Paths())
}
