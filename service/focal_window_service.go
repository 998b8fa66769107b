package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"text/template"
	"time"

	"ad-aid-platform/models"
	"ad-aid-platform/storage"
	"ad-aid-platform/utils"
)

const (
	focalWindowNamespace = "focal_window"
	focalWindowWidth     = 1126
	focalWindowHeight    = 2436
	focalWindowImageH    = 1600
)

//go:embed templates/focal_window.svg.tmpl
var focalWindowSVG string

var focalWindowTemplate = template.Must(template.New("focal_window").Parse(focalWindowSVG))

// Rasterizer turns an SVG document into PNG bytes
type Rasterizer interface {
	RasterizeSVG(ctx context.Context, svg []byte, width, height int) ([]byte, error)
}

// FocalWindowService composes focal-window creatives tinted with the image's accent color
type FocalWindowService struct {
	store      storage.ByteStore
	rasterizer Rasterizer
	now        func() time.Time
}

// NewFocalWindowService creates a FocalWindowService. rasterizer may be nil,
// in which case PNG output is unavailable.
func NewFocalWindowService(store storage.ByteStore, rasterizer Rasterizer) *FocalWindowService {
	return &FocalWindowService{store: store, rasterizer: rasterizer, now: time.Now}
}

type focalWindowData struct {
	Width, Height, ImageHeight  int
	GradientTop, GradientHeight int
	IconX, IconY, IconRadius    int
	Color                       string
	ImageMIME                   string
	ImageBase64                 string
}

// RenderSVG fills the focal-window template with the image and color
func RenderSVG(imageData []byte, imageMIME, color string) ([]byte, error) {
	gradientHeight := focalWindowImageH / 3
	data := focalWindowData{
		Width:          focalWindowWidth,
		Height:         focalWindowHeight,
		ImageHeight:    focalWindowImageH,
		GradientTop:    focalWindowImageH - gradientHeight,
		GradientHeight: gradientHeight,
		IconX:          focalWindowWidth / 2,
		IconY:          focalWindowImageH + 200,
		IconRadius:     96,
		Color:          color,
		ImageMIME:      imageMIME,
		ImageBase64:    base64.StdEncoding.EncodeToString(imageData),
	}

	var buf bytes.Buffer
	if err := focalWindowTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute focal window template: %w", err)
	}
	return buf.Bytes(), nil
}

func imageMIMEType(imageData []byte, filename string) string {
	if mime := utils.ContentTypeByExtension(filename); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return http.DetectContentType(imageData)
}

// Generate samples the accent color, renders the creative, stores it and
// optionally a PNG rendering next to it.
func (s *FocalWindowService) Generate(ctx context.Context, imageData []byte, filename string, withPNG bool) (*models.FocalWindowResponse, error) {
	if len(imageData) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"image": "is required"}}
	}
	if withPNG && s.rasterizer == nil {
		return nil, &ValidationError{Fields: map[string]string{"format": "png rendering is not configured"}}
	}

	color := SampleColor(imageData)
	svg, err := RenderSVG(imageData, imageMIMEType(imageData, filename), color)
	if err != nil {
		return nil, err
	}

	baseName := fmt.Sprintf("%s/focal_window_%d", focalWindowNamespace, s.now().UnixNano())
	svgPath := baseName + ".svg"
	if err := s.store.Write(ctx, svgPath, svg); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", models.ErrStorageFailure, svgPath, err)
	}

	response := &models.FocalWindowResponse{
		OK:             true,
		SVGURL:         s.store.PublicURL(svgPath),
		ExtractedColor: color,
		Message:        "focal window generated",
	}

	if withPNG {
		png, err := s.rasterizer.RasterizeSVG(ctx, svg, focalWindowWidth, focalWindowHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize focal window: %w", err)
		}
		pngPath := baseName + ".png"
		if err := s.store.Write(ctx, pngPath, png); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", models.ErrStorageFailure, pngPath, err)
		}
		response.PNGURL = s.store.PublicURL(pngPath)
	}

	log.Printf("🎨 Focal window generated: %s (color %s)", response.SVGURL, color)
	return response, nil
}
