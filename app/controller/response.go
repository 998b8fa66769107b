package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"ad-aid-platform/models"
)

const (
	// maxJSONBodyBytes matches the 20mb JSON limit of the original API
	maxJSONBodyBytes = 20 << 20
	// maxUploadBytes caps multipart uploads (masks, workflows, images)
	maxUploadBytes = 32 << 20
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse is returned by delete endpoints
type OKResponse struct {
	OK bool `json:"ok"`
}

// writeJSON writes v as JSON with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidFormat), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"error": "..."} with its mapped status
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// badRequest writes a 400 with a formatted message
func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// decodeJSONBody decodes the limited request body into dst, writing a 400 on failure
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "Invalid request body: %v", err)
		return false
	}
	return true
}

// parseWindow reads skip and limit query parameters (defaults 0 and 100)
func parseWindow(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, 100
	if v := r.URL.Query().Get("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("%w: skip must be a non-negative integer", models.ErrValidation)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer", models.ErrValidation)
		}
	}
	return skip, limit, nil
}

// readUploadedFile returns the first multipart file found under one of the field names
func readUploadedFile(w http.ResponseWriter, r *http.Request, fields ...string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("%w: failed to parse multipart form: %v", models.ErrValidation, err)
	}

	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: failed to read %s: %v", models.ErrValidation, field, err)
		}
		data, err := readAllAndClose(file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read uploaded %s: %w", field, err)
		}
		return data, header.Filename, nil
	}
	return nil, "", fmt.Errorf("%w: file field %q is required", models.ErrValidation, fields[0])
}

func readAllAndClose(file multipart.File) ([]byte, error) {
	defer file.Close()
	return io.ReadAll(file)
}
