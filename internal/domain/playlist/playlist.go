// Package playlist provides the Playlist domain entity.
package playlist

import "github.com/osa030/slidebox/internal/domain/media"

// Playlist is an ordered set of images with a current position.
// It is not safe for concurrent use; the playback controller serializes access.
type Playlist struct {
	images []media.ImageRef
	index  int
}

// New creates a playlist positioned at the first image.
func New(images []media.ImageRef) *Playlist {
	p := &Playlist{}
	p.Load(images)
	return p
}

// Load replaces the playlist content and resets the position to 0.
func (p *Playlist) Load(images []media.ImageRef) {
	p.images = make([]media.ImageRef, len(images))
	copy(p.images, images)
	p.index = 0
}

// Next moves forward by one, wrapping to the first image after the last.
func (p *Playlist) Next() {
	if len(p.images) == 0 {
		return
	}
	p.index = (p.index + 1) % len(p.images)
}

// Previous moves back by one, wrapping to the last image before the first.
func (p *Playlist) Previous() {
	if len(p.images) == 0 {
		return
	}
	p.index = (p.index - 1 + len(p.images)) % len(p.images)
}

// Current returns the image at the current position.
// ok is false when the playlist is empty.
func (p *Playlist) Current() (img media.ImageRef, ok bool) {
	if len(p.images) == 0 {
		return media.ImageRef{}, false
	}
	return p.images[p.index], true
}

// Index returns the current position. Meaningless when empty.
func (p *Playlist) Index() int {
	return p.index
}

// Len returns the number of images.
func (p *Playlist) Len() int {
	return len(p.images)
}

// IsEmpty returns true if the playlist has no images.
func (p *Playlist) IsEmpty() bool {
	return len(p.images) == 0
}

// Images returns a copy of the images in order.
func (p *Playlist) Images() []media.ImageRef {
	result := make([]media.ImageRef, len(p.images))
	copy(result, p.images)
	return result
}

// Find returns the image with the given ID.
func (p *Playlist) Find(id string) (media.ImageRef, bool) {
	for _, img := range p.images {
		if img.ID == id {
			return img, true
		}
	}
	return media.ImageRef{}, false
}
