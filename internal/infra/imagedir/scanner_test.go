package imagedir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func names(t *testing.T, dir string, recursive bool) []string {
	t.Helper()
	images, err := Scan(dir, recursive)
	require.NoError(t, err)
	result := make([]string, len(images))
	for i, img := range images {
		rel, err := filepath.Rel(dir, img.Path)
		require.NoError(t, err)
		result[i] = filepath.ToSlash(rel)
	}
	return result
}

func TestScan_FiltersByContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.png"), pngHeader)
	writeFile(t, filepath.Join(dir, "a.jpg"), jpegHeader)
	writeFile(t, filepath.Join(dir, "c.gif"), gifHeader)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not an image"))
	writeFile(t, filepath.Join(dir, "fake.png"), []byte("plain text pretending"))
	writeFile(t, filepath.Join(dir, "noext"), pngHeader)

	assert.Equal(t, []string{"a.jpg", "b.png", "c.gif", "noext"}, names(t, dir, false))
}

func TestScan_Metadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	writeFile(t, path, pngHeader)

	images, err := Scan(dir, false)
	require.NoError(t, err)
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "photo.png", img.Name)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, int64(len(pngHeader)), img.Size)
	assert.True(t, filepath.IsAbs(img.Path))
	assert.Equal(t, ImageID(img.Path), img.ID)
}

func TestScan_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.png"), pngHeader)
	writeFile(t, filepath.Join(dir, "2024", "summer.png"), pngHeader)
	writeFile(t, filepath.Join(dir, ".thumbs", "hidden.png"), pngHeader)
	writeFile(t, filepath.Join(dir, ".hidden.png"), pngHeader)

	assert.Equal(t, []string{"top.png"}, names(t, dir, false))
	assert.Equal(t, []string{"2024/summer.png", "top.png"}, names(t, dir, true))
}

func TestScan_EmptyDir(t *testing.T) {
	images, err := Scan(t.TempDir(), true)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestScan_Errors(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.png")
	writeFile(t, file, pngHeader)
	_, err = Scan(file, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotDirectory))
}

func TestImageID_Stable(t *testing.T) {
	assert.Equal(t, ImageID("/a/b.png"), ImageID("/a/b.png"))
	assert.NotEqual(t, ImageID("/a/b.png"), ImageID("/a/c.png"))
}
