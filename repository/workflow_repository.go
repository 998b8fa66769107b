package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ad-aid-platform/models"
)

const workflowColumns = `id, name, content::text, thumbnail_path, version, created_at, updated_at`

// WorkflowRepository handles database operations for ComfyUI workflows
// Implements WorkflowRepositoryInterface
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(conn *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: conn}
}

// Ensure WorkflowRepository implements WorkflowRepositoryInterface
var _ WorkflowRepositoryInterface = (*WorkflowRepository)(nil)

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var w models.Workflow
	var content string
	var thumbnailPath sql.NullString
	err := row.Scan(
		&w.ID,
		&w.Name,
		&content,
		&thumbnailPath,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Content = json.RawMessage(content)
	w.ThumbnailPath = nullStringPtr(thumbnailPath)
	return &w, nil
}

// List returns a window of workflows ordered by creation time
func (r *WorkflowRepository) List(ctx context.Context, skip, limit int) ([]models.Workflow, error) {
	skip, limit = window(skip, limit)
	log.Printf("🔍 Listing workflows (skip: %d, limit: %d)", skip, limit)

	query := `SELECT ` + workflowColumns + ` FROM comfy_workflows ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		log.Printf("❌ Error listing workflows: %v", err)
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	workflows := []models.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}
	return workflows, nil
}

// GetByID retrieves a workflow by its id
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM comfy_workflows WHERE id = $1`
	w, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
		}
		log.Printf("❌ Error fetching workflow %s: %v", id, err)
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

// Create inserts a new workflow. Version, created_at and updated_at are taken from the argument.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	log.Printf("💾 Creating workflow: id=%s, name=%s, version=%d", workflow.ID, workflow.Name, workflow.Version)

	query := `
		INSERT INTO comfy_workflows (id, name, content, thumbnail_path, version, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
		RETURNING ` + workflowColumns

	created, err := scanWorkflow(r.db.QueryRowContext(ctx, query,
		workflow.ID,
		workflow.Name,
		string(workflow.Content),
		toNullString(workflow.ThumbnailPath),
		workflow.Version,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("workflow %s: %w", workflow.ID, models.ErrConflict)
		}
		log.Printf("❌ Error creating workflow %s: %v", workflow.ID, err)
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	log.Printf("✅ Workflow created: %s", created.ID)
	return created, nil
}

// UpdateContentIfVersion is a compare-and-swap on the version column
func (r *WorkflowRepository) UpdateContentIfVersion(ctx context.Context, id string, expectedVersion int, update models.WorkflowContentUpdate) (*models.Workflow, error) {
	log.Printf("🔄 Replacing workflow content: id=%s, expected_version=%d", id, expectedVersion)

	query := `
		UPDATE comfy_workflows SET
			content    = $3::jsonb,
			name       = COALESCE($4, name),
			version    = version + 1,
			updated_at = $5
		WHERE id = $1 AND version = $2
		RETURNING ` + workflowColumns

	updated, err := scanWorkflow(r.db.QueryRowContext(ctx, query,
		id,
		expectedVersion,
		string(update.Content),
		toNullString(update.Name),
		update.UpdatedAt,
	))
	if err == nil {
		log.Printf("✅ Workflow %s now at version %d", id, updated.Version)
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Error updating workflow %s: %v", id, err)
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM comfy_workflows WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check workflow existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}

	log.Printf("⚠️  Version conflict on workflow %s (expected %d)", id, expectedVersion)
	return nil, fmt.Errorf("workflow %s at version %d: %w", id, expectedVersion, models.ErrVersionConflict)
}

// UpdateMetadata changes name and thumbnail without touching content or version
func (r *WorkflowRepository) UpdateMetadata(ctx context.Context, id string, req *models.WorkflowUpdateRequest, updatedAt time.Time) (*models.Workflow, error) {
	log.Printf("🔄 Updating workflow metadata: %s", id)

	query := `
		UPDATE comfy_workflows SET
			name           = COALESCE($2, name),
			thumbnail_path = COALESCE($3, thumbnail_path),
			updated_at     = $4
		WHERE id = $1
		RETURNING ` + workflowColumns

	updated, err := scanWorkflow(r.db.QueryRowContext(ctx, query,
		id,
		toNullString(req.Name),
		toNullString(req.ThumbnailPath),
		updatedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️  No rows updated for workflow: %s (record may not exist)", id)
			return nil, fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
		}
		log.Printf("❌ Error updating workflow %s: %v", id, err)
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	log.Printf("✅ Workflow metadata updated: %s (version %d)", id, updated.Version)
	return updated, nil
}

// Delete removes a workflow
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comfy_workflows WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ Error deleting workflow %s: %v", id, err)
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("workflow %s: %w", id, models.ErrNotFound)
	}

	log.Printf("🗑️  Workflow deleted: %s", id)
	return nil
}
