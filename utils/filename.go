package utils

import (
	"path"
	"strings"
)

// BaseName strips any client-side directory from an uploaded filename.
// Browsers on Windows may send backslash separated paths.
func BaseName(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, "/")
	base := path.Base(filename)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// FileExtension returns the extension of an uploaded filename including the
// leading dot, or "" when there is none. Case is preserved.
// Example: "photo.PNG" -> ".PNG", "mask" -> "", ".env" -> ""
func FileExtension(filename string) string {
	base := BaseName(filename)
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || dot == len(base)-1 {
		return ""
	}
	return base[dot:]
}

// NameFromFilename derives a display name from an uploaded filename by
// dropping its directory and extension.
// Example: "flows/portrait v2.json" -> "portrait v2"
func NameFromFilename(filename string) string {
	base := BaseName(filename)
	return strings.TrimSpace(strings.TrimSuffix(base, FileExtension(base)))
}

// IsYAMLFile reports whether the filename carries a YAML extension
func IsYAMLFile(filename string) bool {
	switch strings.ToLower(FileExtension(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ContentTypeByExtension maps the asset extensions the platform serves to MIME types
func ContentTypeByExtension(filename string) string {
	switch strings.ToLower(FileExtension(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
