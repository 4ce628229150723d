package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewImageRef(t *testing.T) {
	img := NewImageRef("img-1", "/photos/2024/beach.jpg", "image/jpeg", 2048)

	assert.Equal(t, "img-1", img.ID)
	assert.Equal(t, "beach.jpg", img.Name)
	assert.Equal(t, "/photos/2024/beach.jpg", img.Path)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, int64(2048), img.Size)
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name     string
		images   []ImageRef
		expected []string
	}{
		{
			name:     "empty",
			images:   []ImageRef{},
			expected: []string{},
		},
		{
			name: "keeps order",
			images: []ImageRef{
				{Path: "/a/2.png"},
				{Path: "/a/1.png"},
			},
			expected: []string{"/a/2.png", "/a/1.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paths(tt.images))
		})
	}
}
