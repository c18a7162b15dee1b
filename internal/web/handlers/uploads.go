package handlers

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FilesHandler serves stored images by bare filename
type FilesHandler struct {
	fsys fs.FS
}

// NewFilesHandler creates a handler serving files from fsys
func NewFilesHandler(fsys fs.FS) *FilesHandler {
	return &FilesHandler{fsys: fsys}
}

// Serve writes the file named by the filename path parameter
func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !fs.ValidPath(name) || name == "." {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	info, err := fs.Stat(h.fsys, name)
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFileFS(w, r, h.fsys, name)
}
