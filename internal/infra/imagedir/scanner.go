// Package imagedir loads image sets from the local filesystem.
package imagedir

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/domain/media"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Scan lists the images under dir in lexical order.
// Files are kept when their content sniffs as image/*; hidden entries are skipped.
func Scan(dir string, recursive bool) ([]media.ImageRef, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve media dir")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat media dir")
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotDirectory, "%s", root)
	}

	images := make([]media.ImageRef, 0)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		img, ok := detect(path)
		if ok {
			images = append(images, img)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan media dir")
	}

	return images, nil
}

// detect sniffs a single file. Unreadable files are skipped.
func detect(path string) (media.ImageRef, bool) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		zlog.Debug().Msgf("imagedir: skipping unreadable file: path=%s err=%v", path, err)
		return media.ImageRef{}, false
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return media.ImageRef{}, false
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return media.NewImageRef(ImageID(path), path, mime.String(), size), true
}

// ImageID returns the stable ID for an absolute image path.
func ImageID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}
