// Package web serves image bytes to presentation layers.
package web

import (
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/slidebox/internal/domain/media"
)

// ImageIDHeader carries the ID of the served image.
const ImageIDHeader = "X-Image-Id"

// Library resolves images in the loaded playlist.
type Library interface {
	Current() (media.ImageRef, bool)
	Find(id string) (media.ImageRef, bool)
}

type imageHandler struct {
	library Library
}

// NewImageHandler serves GET /images/current and GET /images/{id}.
// Only images in the loaded playlist are reachable.
func NewImageHandler(library Library) http.Handler {
	h := &imageHandler{library: library}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /images/current", h.current)
	mux.HandleFunc("GET /images/{id}", h.byID)
	return mux
}

func (h *imageHandler) current(w http.ResponseWriter, r *http.Request) {
	img, ok := h.library.Current()
	if !ok {
		http.Error(w, "no image loaded", http.StatusNotFound)
		return
	}
	// The current image changes on every advance.
	w.Header().Set("Cache-Control", "no-store")
	serve(w, r, img)
}

func (h *imageHandler) byID(w http.ResponseWriter, r *http.Request) {
	img, ok := h.library.Find(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	serve(w, r, img)
}

func serve(w http.ResponseWriter, r *http.Request, img media.ImageRef) {
	zlog.Debug().Msgf("web: serving image: id=%s path=%s", img.ID, img.Path)
	w.Header().Set(ImageIDHeader, img.ID)
	if img.MIMEType != "" {
		w.Header().Set("Content-Type", img.MIMEType)
	}
	http.ServeFile(w, r, img.Path)
}
