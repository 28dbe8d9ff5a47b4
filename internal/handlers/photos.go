package handlers

import (
	"net/http"
	"unicode/utf8"

	"runvault/internal/middleware"
	"runvault/internal/service"
)

// Photos handles upload registration and photo deletion.
type Photos struct {
	media *service.MediaService
}

// NewPhotos creates the photo handler group.
func NewPhotos(media *service.MediaService) *Photos {
	return &Photos{media: media}
}

type uploadURLsRequest struct {
	Files []service.UploadRequest `json:"files"`
}

// UploadURLs registers pending uploads and returns presigned PUT URLs.
func (h *Photos) UploadURLs(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req uploadURLsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}
	if len(req.Files) > maxUploadBatch {
		writeError(w, http.StatusBadRequest, "too many files in one request (max 50)")
		return
	}
	for _, f := range req.Files {
		if utf8.RuneCountInString(f.FileName) > maxFileNameLen {
			writeError(w, http.StatusBadRequest, "file name is too long (max 255 characters)")
			return
		}
	}

	pending, err := h.media.RegisterUploads(r.Context(), user.ID, req.Files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"uploads": pending})
}

// Delete removes a single photo and its storage object.
func (h *Photos) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.media.DeletePhoto(r.Context(), id, user); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
