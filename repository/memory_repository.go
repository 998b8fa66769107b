package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"ad-aid-platform/models"
)

// MemoryTemplateRepository keeps templates in process memory.
// It backs the in-memory run mode and the service tests.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]models.Template
	now       func() time.Time
}

// NewMemoryTemplateRepository creates an empty MemoryTemplateRepository
func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{
		templates: make(map[string]models.Template),
		now:       time.Now,
	}
}

// Ensure MemoryTemplateRepository implements TemplateRepositoryInterface
var _ TemplateRepositoryInterface = (*MemoryTemplateRepository)(nil)

func (r *MemoryTemplateRepository) List(ctx context.Context, skip, limit int) ([]models.Template, error) {
	skip, limit = window(skip, limit)

	r.mu.RLock()
	all := make([]models.Template, 0, len(r.templates))
	for _, t := range r.templates {
		all = append(all, t)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, skip, limit), nil
}

func (r *MemoryTemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	return &t, nil
}

func (r *MemoryTemplateRepository) Create(ctx context.Context, template *models.Template) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[template.ID]; exists {
		return nil, fmt.Errorf("template %s: %w", template.ID, models.ErrConflict)
	}
	t := *template
	now := r.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.templates[t.ID] = t
	return &t, nil
}

func (r *MemoryTemplateRepository) Update(ctx context.Context, id string, req *models.TemplateUpdateRequest) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	req.Apply(&t)
	t.UpdatedAt = r.now()
	r.templates[id] = t
	return &t, nil
}

func (r *MemoryTemplateRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	delete(r.templates, id)
	return nil
}

func (r *MemoryTemplateRepository) SetMaskPath(ctx context.Context, id string, maskPath string) (*string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	previous := t.MaskPath
	t.MaskPath = &maskPath
	t.UpdatedAt = r.now()
	r.templates[id] = t
	return previous, nil
}

// MemoryWorkflowRepository keeps workflows in process memory
type MemoryWorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[string]models.Workflow
}

// NewMemoryWorkflowRepository creates an empty MemoryWorkflowRepository
func NewMemoryWorkflowRepository() *MemoryWorkflowRepository {
	return &MemoryWorkflowRepository{workflows: make(map[string]models.Workflow)}
}

// Ensure MemoryWorkflowRepository implements WorkflowRepositoryInterface
var _ WorkflowRepositoryInterface = (*MemoryWorkflowRepository)(nil)

func copyWorkflow(w models.Workflow) *models.Workflow {
	w.Content = append(json.RawMessage(nil), w.Content...)
	return &w
}

func (r *MemoryWorkflowRepository) List(ctx context.Context, skip, limit int) ([]models.Workflow, error) {
	skip, limit = window(skip, limit)

	r.mu.RLock()
	all := make([]models.Workflow, 0, len(r.workflows))
	for _, w := range r.workflows {
		all = append(all, *copyWorkflow(w))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, skip, limit), nil
}

func (r *MemoryWorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}
	return copyWorkflow(w), nil
}

func (r *MemoryWorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workflows[workflow.ID]; exists {
		return nil, fmt.Errorf("workflow %s: %w", workflow.ID, models.ErrConflict)
	}
	stored := copyWorkflow(*workflow)
	r.workflows[workflow.ID] = *stored
	return copyWorkflow(*stored), nil
}

func (r *MemoryWorkflowRepository) UpdateContentIfVersion(ctx context.Context, id string, expectedVersion int, update models.WorkflowContentUpdate) (*models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}
	if w.Version != expectedVersion {
		return nil, fmt.Errorf("workflow %s at version %d: %w", id, expectedVersion, models.ErrVersionConflict)
	}
	w.Content = append(json.RawMessage(nil), update.Content...)
	if update.Name != nil {
		w.Name = *update.Name
	}
	w.Version++
	w.UpdatedAt = update.UpdatedAt
	r.workflows[id] = w
	return copyWorkflow(w), nil
}

func (r *MemoryWorkflowRepository) UpdateMetadata(ctx context.Context, id string, req *models.WorkflowUpdateRequest, updatedAt time.Time) (*models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.ThumbnailPath != nil {
		thumbnail := *req.ThumbnailPath
		w.ThumbnailPath = &thumbnail
	}
	w.UpdatedAt = updatedAt
	r.workflows[id] = w
	return copyWorkflow(w), nil
}

func (r *MemoryWorkflowRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workflows[id]; !ok {
		return fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}
	delete(r.workflows, id)
	return nil
}

func paginate[T any](all []T, skip, limit int) []T {
	if skip >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit < end-skip {
		end = skip + limit
	}
	return all[skip:end]
}
