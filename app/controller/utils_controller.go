package controller

import (
	"mime"
	"net/http"
	"strings"

	"ad-aid-platform/models"
	"ad-aid-platform/service"
)

// defaultIconName is suggested for every analyzed image
const defaultIconName = "star"

// UtilsController handles image utility endpoints
type UtilsController struct {
	focalWindow *service.FocalWindowService
}

// NewUtilsController creates a new UtilsController
func NewUtilsController(focalWindow *service.FocalWindowService) *UtilsController {
	return &UtilsController{focalWindow: focalWindow}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// AnalyzeColor handles POST /api/utils/analyze-color.
// Accepts JSON {"imageBase64": "..."} or a multipart "file"/"image" field.
// Undecodable images still succeed with the fallback color.
func (c *UtilsController) AnalyzeColor(w http.ResponseWriter, r *http.Request) {
	var hexColor string

	if isMultipart(r) {
		data, _, err := readUploadedFile(w, r, "file", "image")
		if err != nil {
			writeError(w, r, err)
			return
		}
		hexColor = service.SampleColor(data)
	} else {
		var req models.AnalyzeColorRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.ImageBase64) == "" {
			badRequest(w, "imageBase64 is required")
			return
		}
		hexColor = service.SampleColorBase64(req.ImageBase64)
	}

	writeJSON(w, http.StatusOK, models.AnalyzeColorResponse{
		HexColor: hexColor,
		IconName: defaultIconName,
	})
}

// GenerateFocalWindow handles POST /api/focal-window/generate (multipart "image", optional format=png)
func (c *UtilsController) GenerateFocalWindow(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUploadedFile(w, r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}

	withPNG := strings.EqualFold(r.FormValue("format"), "png")
	response, err := c.focalWindow.Generate(r.Context(), data, filename, withPNG)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
