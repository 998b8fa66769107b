package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"ad-aid-platform/models"
	"ad-aid-platform/repository"
	"ad-aid-platform/storage"
	"ad-aid-platform/utils"
)

// MaskNamespace is the byte store directory holding template masks
const MaskNamespace = "masks"

// AssetBinder stores mask files and points templates at them
type AssetBinder struct {
	templates repository.TemplateRepositoryInterface
	store     storage.ByteStore
	locks     *utils.KeyedMutex
}

// NewAssetBinder creates a new AssetBinder
func NewAssetBinder(templates repository.TemplateRepositoryInterface, store storage.ByteStore) *AssetBinder {
	return &AssetBinder{
		templates: templates,
		store:     store,
		locks:     utils.NewKeyedMutex(),
	}
}

// MaskObjectPath returns the byte store path of a template's mask:
// masks/{templateID}_mask{ext}, ext taken from the uploaded filename.
func MaskObjectPath(templateID, filename string) string {
	return MaskNamespace + "/" + templateID + "_mask" + utils.FileExtension(filename)
}

// Bind writes the mask bytes, then points the template at them, and returns
// the public mask path. The record is only touched after the write succeeded.
// When the extension changed since the previous bind, the old file is removed
// once the record no longer references it.
func (b *AssetBinder) Bind(ctx context.Context, templateID string, data []byte, filename string) (string, error) {
	unlock := b.locks.Lock(templateID)
	defer unlock()

	if _, err := b.templates.GetByID(ctx, templateID); err != nil {
		return "", err
	}

	objectPath, err := storage.CleanPath(MaskObjectPath(templateID, filename))
	if err != nil || path.Dir(objectPath) != MaskNamespace {
		return "", fmt.Errorf("%w: template id %q cannot be used as a file name", models.ErrValidation, templateID)
	}

	if err := b.store.Write(ctx, objectPath, data); err != nil {
		log.Printf("❌ Failed to store mask for template %s: %v", templateID, err)
		return "", fmt.Errorf("%w: writing %s: %v", models.ErrStorageFailure, objectPath, err)
	}

	publicPath := b.store.PublicURL(objectPath)
	previous, err := b.templates.SetMaskPath(ctx, templateID, publicPath)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.removeObject(ctx, objectPath, "template deleted during bind")
		}
		return "", err
	}

	if previous != nil && *previous != publicPath {
		// a case-only change names the same file on case-insensitive filesystems
		oldPath, ok := b.store.PathFromPublicURL(*previous)
		if ok && path.Dir(oldPath) == MaskNamespace && !strings.EqualFold(oldPath, objectPath) {
			b.removeObject(ctx, oldPath, "replaced by "+objectPath)
		}
	}

	log.Printf("✅ Mask bound: template=%s, mask_path=%s (%d bytes)", templateID, publicPath, len(data))
	return publicPath, nil
}

// removeObject deletes an object the record no longer references; failures only leave an orphan
func (b *AssetBinder) removeObject(ctx context.Context, objectPath, reason string) {
	if err := b.store.Delete(ctx, objectPath); err != nil {
		log.Printf("⚠️  Could not remove orphaned mask %s (%s): %v", objectPath, reason, err)
		return
	}
	log.Printf("🗑️  Removed mask %s (%s)", objectPath, reason)
}
