package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
)

func strPtr(s string) *string { return &s }

func TestTemplateCreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(repository.NewMemoryTemplateRepository())

	created, err := svc.Create(ctx, &models.TemplateCreateRequest{
		ID:       "tpl-1",
		Name:     "Summer",
		App:      "Shop",
		Category: "Seasonal",
	})
	require.NoError(t, err)
	require.NotNil(t, created.Dimensions)
	assert.Equal(t, DefaultTemplateDimensions, *created.Dimensions)
	assert.Nil(t, created.MaskPath)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = svc.Create(ctx, &models.TemplateCreateRequest{ID: "tpl-1", Name: "x", App: "y", Category: "z"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTemplateCreateValidation(t *testing.T) {
	svc := NewTemplateService(repository.NewMemoryTemplateRepository())

	_, err := svc.Create(context.Background(), &models.TemplateCreateRequest{ID: "a/b"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must not contain path separators", verr.Fields["id"])
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Equal(t, "is required", verr.Fields["app"])
	assert.Equal(t, "is required", verr.Fields["category"])
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "validation error: app is required; category is required; id must not contain path separators; name is required", err.Error())
}

func TestTemplateUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(repository.NewMemoryTemplateRepository())

	_, err := svc.Create(ctx, &models.TemplateCreateRequest{ID: "tpl-1", Name: "Old", App: "A", Category: "C"})
	require.NoError(t, err)

	unchanged, err := svc.Update(ctx, "tpl-1", &models.TemplateUpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Old", unchanged.Name)

	checked := true
	updated, err := svc.Update(ctx, "tpl-1", &models.TemplateUpdateRequest{
		Name:       strPtr("New"),
		Checked:    &checked,
		WorkflowID: strPtr("no-such-workflow"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "A", updated.App)
	assert.True(t, updated.Checked)
	assert.Equal(t, "no-such-workflow", *updated.WorkflowID)

	_, err = svc.Update(ctx, "missing", &models.TemplateUpdateRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Update(ctx, "missing", &models.TemplateUpdateRequest{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTemplateListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewTemplateService(repository.NewMemoryTemplateRepository())

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, &models.TemplateCreateRequest{ID: id, Name: id, App: "app", Category: "cat"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, svc.Delete(ctx, "b"))
	_, err = svc.Get(ctx, "b")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "b"), models.ErrNotFound)
}
