package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"ad-aid-platform/models"
)

const templateColumns = `id, name, app, category, checked, dimensions, mask_path, splash_text, workflow_id, created_at, updated_at`

// TemplateRepository handles database operations for ad templates
// Implements TemplateRepositoryInterface
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(conn *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: conn}
}

// Ensure TemplateRepository implements TemplateRepositoryInterface
var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)

func scanTemplate(row rowScanner) (*models.Template, error) {
	var t models.Template
	var dimensions, maskPath, splashText, workflowID sql.NullString
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.App,
		&t.Category,
		&t.Checked,
		&dimensions,
		&maskPath,
		&splashText,
		&workflowID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Dimensions = nullStringPtr(dimensions)
	t.MaskPath = nullStringPtr(maskPath)
	t.SplashText = nullStringPtr(splashText)
	t.WorkflowID = nullStringPtr(workflowID)
	return &t, nil
}

// List returns a window of templates ordered by creation time
func (r *TemplateRepository) List(ctx context.Context, skip, limit int) ([]models.Template, error) {
	skip, limit = window(skip, limit)
	log.Printf("🔍 Listing templates (skip: %d, limit: %d)", skip, limit)

	query := `SELECT ` + templateColumns + ` FROM ad_templates ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		log.Printf("❌ Error listing templates: %v", err)
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	log.Printf("✓ Successfully fetched %d templates", len(templates))
	return templates, nil
}

// GetByID retrieves a template by its id
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM ad_templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
		}
		log.Printf("❌ Error fetching template %s: %v", id, err)
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Create inserts a new template
func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) (*models.Template, error) {
	log.Printf("💾 Creating template: id=%s, app=%s, category=%s", template.ID, template.App, template.Category)

	query := `
		INSERT INTO ad_templates (id, name, app, category, checked, dimensions, mask_path, splash_text, workflow_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + templateColumns

	created, err := scanTemplate(r.db.QueryRowContext(ctx, query,
		template.ID,
		template.Name,
		template.App,
		template.Category,
		template.Checked,
		toNullString(template.Dimensions),
		toNullString(template.MaskPath),
		toNullString(template.SplashText),
		toNullString(template.WorkflowID),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("template %s: %w", template.ID, models.ErrConflict)
		}
		log.Printf("❌ Error creating template %s: %v", template.ID, err)
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	log.Printf("✅ Template created: %s", created.ID)
	return created, nil
}

// Update applies the non-nil fields of req to the template
func (r *TemplateRepository) Update(ctx context.Context, id string, req *models.TemplateUpdateRequest) (*models.Template, error) {
	log.Printf("🔄 Updating template: %s", id)

	query := `
		UPDATE ad_templates SET
			name        = COALESCE($2, name),
			app         = COALESCE($3, app),
			category    = COALESCE($4, category),
			checked     = COALESCE($5, checked),
			dimensions  = COALESCE($6, dimensions),
			mask_path   = COALESCE($7, mask_path),
			splash_text = COALESCE($8, splash_text),
			workflow_id = COALESCE($9, workflow_id),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + templateColumns

	updated, err := scanTemplate(r.db.QueryRowContext(ctx, query,
		id,
		toNullString(req.Name),
		toNullString(req.App),
		toNullString(req.Category),
		toNullBool(req.Checked),
		toNullString(req.Dimensions),
		toNullString(req.MaskPath),
		toNullString(req.SplashText),
		toNullString(req.WorkflowID),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️  No rows updated for template: %s (record may not exist)", id)
			return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
		}
		log.Printf("❌ Error updating template %s: %v", id, err)
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	log.Printf("✅ Successfully updated template: %s", id)
	return updated, nil
}

// Delete removes a template
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ad_templates WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ Error deleting template %s: %v", id, err)
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}

	log.Printf("🗑️  Template deleted: %s", id)
	return nil
}

// SetMaskPath swaps the mask pointer in one statement. The row lock taken by
// the subquery makes the returned previous value exact under concurrency.
func (r *TemplateRepository) SetMaskPath(ctx context.Context, id string, maskPath string) (*string, error) {
	query := `
		UPDATE ad_templates t
		SET mask_path = $2, updated_at = NOW()
		FROM (SELECT id, mask_path FROM ad_templates WHERE id = $1 FOR UPDATE) prev
		WHERE t.id = prev.id
		RETURNING prev.mask_path
	`

	var previous sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id, maskPath).Scan(&previous); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️  Template %s vanished before its mask pointer could be set", id)
			return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
		}
		log.Printf("❌ Error setting mask path for template %s: %v", id, err)
		return nil, fmt.Errorf("failed to set mask path: %w", err)
	}

	log.Printf("✅ Mask pointer updated: template=%s, mask_path=%s", id, maskPath)
	return nullStringPtr(previous), nil
}
