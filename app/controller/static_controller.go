package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ad-aid-platform/models"
	"ad-aid-platform/storage"
	"ad-aid-platform/utils"
)

// StaticController serves byte store objects under the public prefix
type StaticController struct {
	store storage.ByteStore
}

// NewStaticController creates a new StaticController
func NewStaticController(store storage.ByteStore) *StaticController {
	return &StaticController{store: store}
}

// Serve handles GET /static/*
func (c *StaticController) Serve(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "*")
	// chi matches on RawPath when it is set, leaving the wildcard escaped
	if r.URL.RawPath != "" {
		unescaped, err := storage.UnescapePath(param)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		param = unescaped
	}

	objectPath, err := storage.CleanPath(param)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data, err := c.store.Read(r.Context(), objectPath)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, r, err)
		return
	}

	etag := `"` + utils.Checksum(data) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", utils.ContentTypeByExtension(objectPath))
	w.Header().Set("Cache-Control", "no-cache")

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
}
