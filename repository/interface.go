package repository

import (
	"context"
	"time"

	"ad-aid-platform/models"
)

// TemplateRepositoryInterface defines the contract for template repository operations
type TemplateRepositoryInterface interface {
	List(ctx context.Context, skip, limit int) ([]models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, error)
	Create(ctx context.Context, template *models.Template) (*models.Template, error)
	Update(ctx context.Context, id string, req *models.TemplateUpdateRequest) (*models.Template, error)
	Delete(ctx context.Context, id string) error
	// SetMaskPath points the template at a new mask and returns the previous pointer.
	// It never creates a row: a missing template yields models.ErrNotFound.
	SetMaskPath(ctx context.Context, id string, maskPath string) (previous *string, err error)
}

// WorkflowRepositoryInterface defines the contract for workflow repository operations
type WorkflowRepositoryInterface interface {
	List(ctx context.Context, skip, limit int) ([]models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	// Create inserts a new workflow; an existing id yields models.ErrConflict.
	Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	// UpdateContentIfVersion replaces the content and bumps the version by one,
	// only if the stored version still equals expectedVersion. Otherwise it returns
	// models.ErrVersionConflict, or models.ErrNotFound if the row is gone.
	UpdateContentIfVersion(ctx context.Context, id string, expectedVersion int, update models.WorkflowContentUpdate) (*models.Workflow, error)
	// UpdateMetadata writes the supplied metadata fields and leaves content and
	// version alone. A missing workflow yields models.ErrNotFound.
	UpdateMetadata(ctx context.Context, id string, req *models.WorkflowUpdateRequest, updatedAt time.Time) (*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}
