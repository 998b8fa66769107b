package models

import (
	"encoding/json"
	"time"
)

// Workflow represents a stored ComfyUI workflow definition.
// Content is the uploaded document, kept as raw JSON.
type Workflow struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Content       json.RawMessage `json:"content"`
	ThumbnailPath *string         `json:"thumbnail_path"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WorkflowCreateRequest represents the request body for creating a workflow directly
type WorkflowCreateRequest struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Content       json.RawMessage `json:"content"`
	ThumbnailPath *string         `json:"thumbnail_path"`
}

// WorkflowUpdateRequest edits workflow metadata; nil fields are left untouched
type WorkflowUpdateRequest struct {
	Name          *string `json:"name"`
	ThumbnailPath *string `json:"thumbnail_path"`
}

// IsEmpty reports whether the request carries no field to update
func (r *WorkflowUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.ThumbnailPath == nil
}

// WorkflowContentUpdate carries the fields written by a versioned content replacement.
// Name is only written when non-nil.
type WorkflowContentUpdate struct {
	Content   json.RawMessage
	Name      *string
	UpdatedAt time.Time
}
