package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ad-aid-platform/models"
	"ad-aid-platform/service"
)

// TemplateController handles HTTP requests for ad templates and their masks
type TemplateController struct {
	templates *service.TemplateService
	binder    *service.AssetBinder
	previews  *service.PreviewService
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(templates *service.TemplateService, binder *service.AssetBinder, previews *service.PreviewService) *TemplateController {
	return &TemplateController{
		templates: templates,
		binder:    binder,
		previews:  previews,
	}
}

// List handles GET /api/templates?skip=&limit=
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseWindow(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	templates, err := c.templates.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// Get handles GET /api/templates/{id}
func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	template, err := c.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// Create handles POST /api/templates
func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TemplateCreateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	template, err := c.templates.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

// Update handles PUT /api/templates/{id}; only the supplied fields change
func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.TemplateUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	template, err := c.templates.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// Delete handles DELETE /api/templates/{id}
func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// UploadMask handles POST /api/templates/{id}/mask (multipart field "file" or "mask")
func (c *TemplateController) UploadMask(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUploadedFile(w, r, "file", "mask")
	if err != nil {
		writeError(w, r, err)
		return
	}

	maskPath, err := c.binder.Bind(r.Context(), chi.URLParam(r, "id"), data, filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MaskUploadResponse{MaskPath: maskPath})
}

// MaskPreview handles GET /api/templates/{id}/mask/preview?size=thumb|medium
func (c *TemplateController) MaskPreview(w http.ResponseWriter, r *http.Request) {
	size := r.URL.Query().Get("size")
	if size == "" {
		size = service.PreviewSizeMedium
	}
	if size != service.PreviewSizeThumb && size != service.PreviewSizeMedium {
		badRequest(w, "Invalid size parameter. Must be 'thumb' or 'medium'")
		return
	}

	preview, err := c.previews.MaskPreview(r.Context(), chi.URLParam(r, "id"), size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(preview)
}
