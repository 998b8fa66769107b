package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ad-aid-platform/models"
	"ad-aid-platform/service"
)

// WorkflowController handles HTTP requests for ComfyUI workflows
type WorkflowController struct {
	workflows *service.WorkflowService
}

// NewWorkflowController creates a new WorkflowController
func NewWorkflowController(workflows *service.WorkflowService) *WorkflowController {
	return &WorkflowController{workflows: workflows}
}

// List handles GET /api/workflows?skip=&limit=
func (c *WorkflowController) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	workflows, err := c.workflows.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflows)
}

// Get handles GET /api/workflows/{id}
func (c *WorkflowController) Get(w http.ResponseWriter, r *http.Request) {
	workflow, err := c.workflows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

// Create handles POST /api/workflows with a JSON body
func (c *WorkflowController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.WorkflowCreateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	workflow, err := c.workflows.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workflow)
}

// Update handles PUT /api/workflows/{id}; only name and thumbnail_path change
func (c *WorkflowController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.WorkflowUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	workflow, err := c.workflows.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

// Upload handles POST /api/workflows/upload?name= (multipart field "file" or "workflow").
// Re-uploading a document with a known id replaces it and bumps the version.
func (c *WorkflowController) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUploadedFile(w, r, "file", "workflow")
	if err != nil {
		writeError(w, r, err)
		return
	}

	// FormValue covers both the query string and the multipart fields
	workflow, err := c.workflows.Ingest(r.Context(), data, filename, r.FormValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

// Delete handles DELETE /api/workflows/{id}
func (c *WorkflowController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.workflows.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}
