package handlers

import (
	"net/http"
	"strconv"

	"runvault/internal/middleware"
	"runvault/internal/service"
)

// Runs handles the run lifecycle endpoints.
type Runs struct {
	runs  *service.RunService
	media *service.MediaService
}

// NewRuns creates the run handler group.
func NewRuns(runs *service.RunService, media *service.MediaService) *Runs {
	return &Runs{runs: runs, media: media}
}

// Create inserts a run and links its initial photos.
func (h *Runs) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var input service.RunInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := validateRunInput(input.Title, input.Description, input.Location); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if len(input.PhotoIDs) > maxAttachBatch {
		writeError(w, http.StatusBadRequest, "too many photos in one request")
		return
	}

	run, err := h.runs.Create(r.Context(), input, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// List returns a page of timeline cards.
func (h *Runs) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	cards, err := h.runs.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": cards})
}

// Get returns a run with its full photo set.
func (h *Runs) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	run, err := h.runs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Update modifies a run's metadata.
func (h *Runs) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input service.RunInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := validateRunInput(input.Title, input.Description, input.Location); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	run, err := h.runs.Update(r.Context(), id, input, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Delete removes a run, its folder, and its photos.
func (h *Runs) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.runs.Delete(r.Context(), id, user); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachPhotos links pending photos to a run.
func (h *Runs) AttachPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req attachPhotosRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.PhotoIDs) > maxAttachBatch {
		writeError(w, http.StatusBadRequest, "too many photos in one request")
		return
	}

	if err := h.media.AttachToRun(r.Context(), id, req.PhotoIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
