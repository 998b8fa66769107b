package service

import (
	"context"
	"strings"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
)

// DefaultTemplateDimensions is applied when a template is created without dimensions
const DefaultTemplateDimensions = "1080 x 1920"

// TemplateService handles ad template records
type TemplateService struct {
	repository repository.TemplateRepositoryInterface
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(repo repository.TemplateRepositoryInterface) *TemplateService {
	return &TemplateService{repository: repo}
}

// List returns a window of templates
func (s *TemplateService) List(ctx context.Context, skip, limit int) ([]models.Template, error) {
	return s.repository.List(ctx, skip, limit)
}

// Get returns one template
func (s *TemplateService) Get(ctx context.Context, id string) (*models.Template, error) {
	return s.repository.GetByID(ctx, id)
}

// Create validates and stores a new template
func (s *TemplateService) Create(ctx context.Context, req *models.TemplateCreateRequest) (*models.Template, error) {
	fields := map[string]string{}
	id := strings.TrimSpace(req.ID)
	switch {
	case id == "":
		fields["id"] = "is required"
	case strings.ContainsAny(id, `/\`) || id == "." || id == "..":
		fields["id"] = "must not contain path separators"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(req.App) == "" {
		fields["app"] = "is required"
	}
	if strings.TrimSpace(req.Category) == "" {
		fields["category"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	dimensions := req.Dimensions
	if dimensions == nil {
		d := DefaultTemplateDimensions
		dimensions = &d
	}

	return s.repository.Create(ctx, &models.Template{
		ID:         id,
		Name:       req.Name,
		App:        req.App,
		Category:   req.Category,
		Checked:    req.Checked,
		Dimensions: dimensions,
		MaskPath:   req.MaskPath,
		SplashText: req.SplashText,
		WorkflowID: req.WorkflowID,
	})
}

// Update applies a partial update. The workflow reference is stored as given
// and never checked against existing workflows.
func (s *TemplateService) Update(ctx context.Context, id string, req *models.TemplateUpdateRequest) (*models.Template, error) {
	if req.IsEmpty() {
		return s.repository.GetByID(ctx, id)
	}
	return s.repository.Update(ctx, id, req)
}

// Delete removes a template record. Its mask file, if any, is left in place.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}
