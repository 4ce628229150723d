// Package media provides the ImageRef domain entity.
package media

import "path/filepath"

// ImageRef represents a displayable image supplied by a media source.
// The underlying file is owned by the source; playlists only reference it.
type ImageRef struct {
	ID       string // Stable ID derived from the absolute path
	Name     string // Display name (file name)
	Path     string // Absolute file path
	MIMEType string // Detected content type, e.g. "image/png"
	Size     int64  // File size in bytes
}

// NewImageRef creates an ImageRef with the display name taken from the path.
func NewImageRef(id, path, mimeType string, size int64) ImageRef {
	return ImageRef{
		ID:       id,
		Name:     filepath.Base(path),
		Path:     path,
		MIMEType: mimeType,
		Size:     size,
	}
}

// Paths returns the file paths of the given images in order.
func Paths(images []ImageRef) []string {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.Path
	}
	return paths
}
