package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marchal/fieldplanner/internal/uploads"
	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

// maxPhotoBytes caps a single upload at 10 MiB, matching what phone cameras
// produce after compression.
const maxPhotoBytes = 10 << 20

type PhotosHandler struct {
	photoRepo        repository.PhotoRepo
	interventionRepo repository.InterventionRepo
	clientRepo       repository.ClientRepo
	files            *uploads.Store
}

func NewPhotosHandler(pr repository.PhotoRepo, ir repository.InterventionRepo, cr repository.ClientRepo, files *uploads.Store) *PhotosHandler {
	return &PhotosHandler{photoRepo: pr, interventionRepo: ir, clientRepo: cr, files: files}
}

// UploadInterventionPhoto accepts a multipart form with a "photo" part,
// stores the file and records it against the intervention.
func (h *PhotosHandler) UploadInterventionPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid intervention id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	iv, err := h.interventionRepo.GetIntervention(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if iv == nil {
		http.Error(w, "intervention not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, err := h.files.Save(header.Filename, file)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	photoID, err := h.photoRepo.CreatePhoto(ctx, id, filename)
	if err != nil {
		h.files.Remove(filename)
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, models.Photo{
		ID:             photoID,
		InterventionID: id,
		Filename:       filename,
	}, http.StatusCreated)
}

// DeletePhoto removes the row first, then the file; a leftover file is
// harmless and the orphan sweep collects it.
func (h *PhotosHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid photo id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	photo, err := h.photoRepo.GetPhoto(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}

	if err := h.photoRepo.DeletePhoto(ctx, id); err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if err := h.files.Remove(photo.Filename); err != nil {
		logger.Error("photo file removal failed", "photo_id", id, "file", photo.Filename, "err", err)
	}

	writeJSON(w, map[string]bool{"deleted": true}, http.StatusOK)
}

func (h *PhotosHandler) ListClientPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	photos, err := h.photoRepo.ListClientPhotos(r.Context(), id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if photos == nil {
		photos = []models.ClientPhoto{}
	}

	writeJSON(w, photos, http.StatusOK)
}

// UploadClientPhoto stores a site photo taken at the client's location,
// outside of any particular intervention.
func (h *PhotosHandler) UploadClientPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid client id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	client, err := h.clientRepo.GetClient(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if client == nil {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, err := h.files.Save(header.Filename, file)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	photoID, err := h.photoRepo.CreateClientPhoto(ctx, id, filename)
	if err != nil {
		h.files.Remove(filename)
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, models.ClientPhoto{
		ID:       photoID,
		ClientID: id,
		Filename: filename,
	}, http.StatusCreated)
}
