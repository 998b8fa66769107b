package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
	"ad-aid-platform/storage"
	"ad-aid-platform/utils"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800

	PreviewSizeThumb  = "thumb"
	PreviewSizeMedium = "medium"
)

// maxDecodePixels caps the canvas an uploaded file may declare before it is decoded
const maxDecodePixels = 40_000_000

var errImageTooLarge = errors.New("image too large")

// checkDecodeBounds reads only the image header. Decoding allocates by the
// declared width and height, not by the compressed size.
func checkDecodeBounds(imageData []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return err
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxDecodePixels {
		return fmt.Errorf("%w: %s declares %dx%d pixels", errImageTooLarge, format, cfg.Width, cfg.Height)
	}
	return nil
}

// OptimizeImage converts an image to a JPEG no larger than the preset size.
// size: "thumb" or "medium"; anything else is treated as medium.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	if err := checkDecodeBounds(imageData); err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", models.ErrInvalidFormat, err)
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", models.ErrInvalidFormat, err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if size == PreviewSizeThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var resized image.Image = img
	if width > maxDim || height > maxDim {
		// Fit keeps the aspect ratio
		resized = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		log.Printf("🔄 Resizing %s image: %dx%d -> %dx%d", format, width, height, resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	// JPEG has no alpha; flatten onto white so transparent mask areas stay readable
	flattened := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), image.White)
	flattened = imaging.Overlay(flattened, resized, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattened, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewService renders cached JPEG previews of template masks
type PreviewService struct {
	templates repository.TemplateRepositoryInterface
	store     storage.ByteStore
	cacheDir  string
}

// NewPreviewService creates a PreviewService caching under cacheDir
func NewPreviewService(templates repository.TemplateRepositoryInterface, store storage.ByteStore, cacheDir string) *PreviewService {
	return &PreviewService{templates: templates, store: store, cacheDir: cacheDir}
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (s *PreviewService) EnsureCacheDir() error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// cachePath keys previews by mask content so a rebind never serves a stale image
func (s *PreviewService) cachePath(templateID, size string, maskData []byte) string {
	filename := fmt.Sprintf("mask_%s_%s_%s.jpg", templateID, size, utils.Checksum(maskData)[:16])
	return filepath.Join(s.cacheDir, filename)
}

// MaskPreview returns a JPEG preview of the template's current mask
func (s *PreviewService) MaskPreview(ctx context.Context, templateID, size string) ([]byte, error) {
	if size != PreviewSizeThumb {
		size = PreviewSizeMedium
	}

	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template.MaskPath == nil {
		return nil, fmt.Errorf("template %s has no mask: %w", templateID, models.ErrNotFound)
	}
	objectPath, ok := s.store.PathFromPublicURL(*template.MaskPath)
	if !ok {
		return nil, fmt.Errorf("mask %s of template %s is not held by this store: %w", *template.MaskPath, templateID, models.ErrNotFound)
	}

	maskData, err := s.store.Read(ctx, objectPath)
	if err != nil {
		return nil, err
	}

	cachePath := s.cachePath(templateID, size, maskData)
	if cached, err := os.ReadFile(cachePath); err == nil {
		log.Printf("✓ Serving cached preview: %s", cachePath)
		return cached, nil
	}

	optimized, err := OptimizeImage(maskData, size)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCacheDir(); err != nil {
		log.Printf("⚠️  %v", err)
	} else if err := os.WriteFile(cachePath, optimized, 0644); err != nil {
		log.Printf("⚠️  Failed to write preview cache %s: %v", cachePath, err)
	} else {
		log.Printf("✓ Preview cached: %s", cachePath)
	}

	return optimized, nil
}
