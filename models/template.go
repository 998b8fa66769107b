package models

import "time"

// Template represents an ad template record
type Template struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	App        string    `json:"app"`
	Category   string    `json:"category"`
	Checked    bool      `json:"checked"`
	Dimensions *string   `json:"dimensions"`
	MaskPath   *string   `json:"mask_path"`
	SplashText *string   `json:"splash_text"`
	WorkflowID *string   `json:"workflow_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TemplateCreateRequest represents the request body for creating a template
type TemplateCreateRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	App        string  `json:"app"`
	Category   string  `json:"category"`
	Checked    bool    `json:"checked"`
	Dimensions *string `json:"dimensions"`
	MaskPath   *string `json:"mask_path"`
	SplashText *string `json:"splash_text"`
	WorkflowID *string `json:"workflow_id"`
}

// TemplateUpdateRequest represents a partial update; nil fields are left untouched
type TemplateUpdateRequest struct {
	Name       *string `json:"name"`
	App        *string `json:"app"`
	Category   *string `json:"category"`
	Checked    *bool   `json:"checked"`
	Dimensions *string `json:"dimensions"`
	MaskPath   *string `json:"mask_path"`
	SplashText *string `json:"splash_text"`
	WorkflowID *string `json:"workflow_id"`
}

// IsEmpty reports whether the request carries no field to update
func (r *TemplateUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.App == nil && r.Category == nil && r.Checked == nil &&
		r.Dimensions == nil && r.MaskPath == nil && r.SplashText == nil && r.WorkflowID == nil
}

// Apply copies the supplied fields of the request onto t
func (r *TemplateUpdateRequest) Apply(t *Template) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.App != nil {
		t.App = *r.App
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.Checked != nil {
		t.Checked = *r.Checked
	}
	if r.Dimensions != nil {
		t.Dimensions = r.Dimensions
	}
	if r.MaskPath != nil {
		t.MaskPath = r.MaskPath
	}
	if r.SplashText != nil {
		t.SplashText = r.SplashText
	}
	if r.WorkflowID != nil {
		t.WorkflowID = r.WorkflowID
	}
}

// MaskUploadResponse is returned after a mask file is bound to a template
type MaskUploadResponse struct {
	MaskPath string `json:"mask_path"`
}
