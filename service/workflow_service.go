package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
	"ad-aid-platform/utils"
)

const (
	defaultIngestAttempts = 10
	untitledWorkflowName  = "Untitled workflow"
)

// IDFactory produces identities for workflows uploaded without an "id" field
type IDFactory func() string

// WorkflowService ingests, lists and deletes workflow definitions
type WorkflowService struct {
	repository  repository.WorkflowRepositoryInterface
	newID       IDFactory
	now         func() time.Time
	maxAttempts int
}

// WorkflowServiceOption customizes a WorkflowService
type WorkflowServiceOption func(*WorkflowService)

// WithIDFactory replaces the random UUID identity factory
func WithIDFactory(f IDFactory) WorkflowServiceOption {
	return func(s *WorkflowService) { s.newID = f }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) WorkflowServiceOption {
	return func(s *WorkflowService) { s.now = now }
}

// WithMaxAttempts bounds how often Ingest retries after losing a concurrent race
func WithMaxAttempts(n int) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(repo repository.WorkflowRepositoryInterface, opts ...WorkflowServiceOption) *WorkflowService {
	s := &WorkflowService{
		repository:  repo,
		newID:       uuid.NewString,
		now:         time.Now,
		maxAttempts: defaultIngestAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// workflowDocument is an uploaded workflow after parsing
type workflowDocument struct {
	content json.RawMessage
	id      string
}

// parseWorkflowDocument accepts JSON (comments and trailing commas allowed)
// or, for .yaml/.yml files, YAML. The top level must be an object.
func parseWorkflowDocument(raw []byte, filename string) (*workflowDocument, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("document is empty")
	}

	var content []byte
	if utils.IsYAMLFile(filename) {
		var decoded any
		if err := yaml.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if _, ok := decoded.(map[string]any); !ok {
			return nil, errors.New("document must be an object")
		}
		encoded, err := json.Marshal(decoded)
		if err != nil {
			return nil, fmt.Errorf("YAML document is not representable as JSON: %w", err)
		}
		content = encoded
	} else {
		converted := jsonc.ToJSON(raw)
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, converted); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		content = compacted.Bytes()
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(content, &top); err != nil || top == nil {
		return nil, errors.New("document must be an object")
	}

	return &workflowDocument{content: content, id: documentID(top["id"])}, nil
}

// documentID reads the "id" field: a non-empty string verbatim, or a number as written
func documentID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Ingest stores an uploaded workflow document. A document whose id already
// exists replaces the stored content and bumps the version by exactly one.
// The name is only changed on re-ingest when nameOverride is non-empty.
func (s *WorkflowService) Ingest(ctx context.Context, raw []byte, filename string, nameOverride string) (*models.Workflow, error) {
	doc, err := parseWorkflowDocument(raw, filename)
	if err != nil {
		log.Printf("❌ Rejected workflow upload %q: %v", filename, err)
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidFormat, err)
	}

	id := doc.id
	synthesized := id == ""
	if synthesized {
		id = s.newID()
	}

	var override *string
	if name := strings.TrimSpace(nameOverride); name != "" {
		override = &name
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		// A synthesized id is always a create; it never replaces a stored workflow
		var existing *models.Workflow
		err := models.ErrNotFound
		if !synthesized {
			existing, err = s.repository.GetByID(ctx, id)
		}
		if errors.Is(err, models.ErrNotFound) {
			created, err := s.createWorkflow(ctx, id, doc.content, override, filename)
			if err == nil {
				return created, nil
			}
			if !errors.Is(err, models.ErrConflict) {
				return nil, err
			}
			log.Printf("⚠️  Workflow %s was created concurrently, retrying (attempt %d)", id, attempt)
			if synthesized {
				id = s.newID()
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up workflow %s: %w", id, err)
		}

		updated, err := s.repository.UpdateContentIfVersion(ctx, id, existing.Version, models.WorkflowContentUpdate{
			Content:   doc.content,
			Name:      override,
			UpdatedAt: s.now(),
		})
		if err == nil {
			log.Printf("🔄 Workflow %s re-ingested: version %d -> %d", id, existing.Version, updated.Version)
			return updated, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		log.Printf("⚠️  Workflow %s changed while ingesting, retrying (attempt %d)", id, attempt)
	}

	return nil, fmt.Errorf("workflow %s: %w after %d attempts", id, models.ErrConcurrentUpdate, s.maxAttempts)
}

func (s *WorkflowService) createWorkflow(ctx context.Context, id string, content json.RawMessage, override *string, filename string) (*models.Workflow, error) {
	name := untitledWorkflowName
	if override != nil {
		name = *override
	} else if fromFile := utils.NameFromFilename(filename); fromFile != "" {
		name = fromFile
	}

	now := s.now()
	created, err := s.repository.Create(ctx, &models.Workflow{
		ID:        id,
		Name:      name,
		Content:   content,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🆕 Workflow %s ingested as %q (version 1)", id, name)
	return created, nil
}

// Create stores a workflow supplied as a JSON body
func (s *WorkflowService) Create(ctx context.Context, req *models.WorkflowCreateRequest) (*models.Workflow, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	var top map[string]json.RawMessage
	if len(req.Content) == 0 || json.Unmarshal(req.Content, &top) != nil || top == nil {
		fields["content"] = "must be a JSON object"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, req.Content); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"content": "must be a JSON object"}}
	}

	now := s.now()
	return s.repository.Create(ctx, &models.Workflow{
		ID:            strings.TrimSpace(req.ID),
		Name:          strings.TrimSpace(req.Name),
		Content:       compacted.Bytes(),
		ThumbnailPath: req.ThumbnailPath,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Update edits name and thumbnail_path. Content and version are unchanged;
// only an upload produces a new version.
func (s *WorkflowService) Update(ctx context.Context, id string, req *models.WorkflowUpdateRequest) (*models.Workflow, error) {
	if req.IsEmpty() {
		return s.repository.GetByID(ctx, id)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &ValidationError{Fields: map[string]string{"name": "must not be blank"}}
		}
		req.Name = &name
	}
	return s.repository.UpdateMetadata(ctx, id, req, s.now())
}

// List returns a window of workflows
func (s *WorkflowService) List(ctx context.Context, skip, limit int) ([]models.Workflow, error) {
	return s.repository.List(ctx, skip, limit)
}

// Get returns one workflow
func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.repository.GetByID(ctx, id)
}

// Delete removes a workflow. Templates referencing it keep their dangling workflow_id.
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}
