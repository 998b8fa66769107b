// Package storage holds the byte stores that keep uploaded assets and
// generated creatives. Objects are addressed by slash-separated relative
// paths such as "masks/tpl-1_mask.png".
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"ad-aid-platform/models"
)

// ByteStore persists and serves files by path
type ByteStore interface {
	// Write stores data at p, replacing any previous object. It returns only
	// after the bytes are durable.
	Write(ctx context.Context, p string, data []byte) error
	// Read returns the object at p, or an error wrapping models.ErrNotFound.
	Read(ctx context.Context, p string) ([]byte, error)
	// Delete removes the object at p. Deleting a missing object is not an error.
	Delete(ctx context.Context, p string) error
	// PublicURL returns the externally addressable form of p
	PublicURL(p string) string
	// PathFromPublicURL reverses PublicURL. ok is false for addresses this
	// store did not produce.
	PathFromPublicURL(publicURL string) (p string, ok bool)
}

// CleanPath normalizes an object path and rejects anything that could
// escape the store root.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty object path", models.ErrValidation)
	}
	if strings.Contains(p, "\\") || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: object path %q must be relative", models.ErrValidation, p)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: object path %q escapes the store", models.ErrValidation, p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", fmt.Errorf("%w: empty object path", models.ErrValidation)
	}
	return cleaned, nil
}

// prefixer implements the PublicURL mapping shared by all stores
type prefixer struct {
	publicPrefix string
}

func newPrefixer(publicPrefix string) prefixer {
	return prefixer{publicPrefix: strings.TrimSuffix(publicPrefix, "/")}
}

// PublicURL escapes each segment so ids containing '?' or '%' stay addressable
func (p prefixer) PublicURL(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return p.publicPrefix + "/" + strings.Join(segments, "/")
}

func (p prefixer) PathFromPublicURL(publicURL string) (string, bool) {
	escaped, found := strings.CutPrefix(publicURL, p.publicPrefix+"/")
	if !found {
		return "", false
	}
	objectPath, err := UnescapePath(escaped)
	if err != nil {
		return "", false
	}
	cleaned, err := CleanPath(objectPath)
	if err != nil {
		return "", false
	}
	return cleaned, true
}

// UnescapePath decodes each segment of an escaped object path. An escaped
// '/' inside a segment is rejected.
func UnescapePath(escaped string) (string, error) {
	segments := strings.Split(escaped, "/")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", fmt.Errorf("%w: object path %q: %v", models.ErrValidation, escaped, err)
		}
		if strings.Contains(decoded, "/") {
			return "", fmt.Errorf("%w: object path %q has an escaped separator", models.ErrValidation, escaped)
		}
		segments[i] = decoded
	}
	return strings.Join(segments, "/"), nil
}
