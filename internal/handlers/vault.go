package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"runvault/internal/middleware"
	"runvault/internal/service"
)

// Vault handles the folder hierarchy endpoints.
type Vault struct {
	vault *service.VaultService
	media *service.MediaService
}

// NewVault creates the vault handler group.
func NewVault(vault *service.VaultService, media *service.MediaService) *Vault {
	return &Vault{vault: vault, media: media}
}

// Root ensures the root folder exists and returns its contents.
func (h *Vault) Root(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	root, err := h.vault.EnsureRoot(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contents, err := h.vault.FolderContents(r.Context(), root.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// Folder returns a folder with its subfolders and photos.
func (h *Vault) Folder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	contents, err := h.vault.FolderContents(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// Children returns a folder's enriched child folders.
func (h *Vault) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	children, err := h.vault.FolderChildren(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": children})
}

// Breadcrumbs returns the ancestor chain for a folder, root first.
func (h *Vault) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	crumbs, err := h.vault.Breadcrumbs(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breadcrumbs": crumbs})
}

type createFolderRequest struct {
	ParentID uuid.UUID `json:"parent_id"`
	Name     string    `json:"name"`
}

// CreateFolder creates a custom folder.
func (h *Vault) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req createFolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateFolderName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.ParentID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "parent_id is required")
		return
	}

	folder, err := h.vault.CreateCustomFolder(req.ParentID, req.Name, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// DeleteFolder recursively deletes a custom folder.
func (h *Vault) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.vault.DeleteFolder(r.Context(), id, user); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attachPhotosRequest struct {
	PhotoIDs []uuid.UUID `json:"photo_ids"`
}

// AttachPhotos links photos to a folder.
func (h *Vault) AttachPhotos(w http.ResponseWriter, r *http.Request) {
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

	if err := h.media.AttachToFolder(r.Context(), id, req.PhotoIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentPhotos returns the newest photos in custom folders.
func (h *Vault) RecentPhotos(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	photos, err := h.media.RecentPhotos(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

// BackfillFolders creates folders for runs that are missing one.
// Admin only, enforced by the router.
func (h *Vault) BackfillFolders(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	migrated, skipped, err := h.vault.BackfillRunFolders(user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"migrated": migrated, "skipped": skipped})
}
