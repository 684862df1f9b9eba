package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

type TechniciansHandler struct {
	technicianRepo repository.TechnicianRepo
}

func NewTechniciansHandler(tr repository.TechnicianRepo) *TechniciansHandler {
	return &TechniciansHandler{technicianRepo: tr}
}

func (h *TechniciansHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.technicianRepo.ListTechnicians(r.Context())
	if err != nil {
		http.Error(w, "failed to list technicians", http.StatusInternalServerError)
		return
	}
	if techs == nil {
		techs = []models.Technician{}
	}

	writeJSON(w, techs, http.StatusOK)
}

type technicianRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTechnician adds an account; once the system is bootstrapped this is
// an admin-only operation.
func (h *TechniciansHandler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	if roleFrom(r.Context()) != "admin" {
		http.Error(w, "Admin role required", http.StatusForbidden)
		return
	}

	var req technicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Technician name is required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 4 {
		http.Error(w, "Password must be at least 4 characters", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	id, err := h.technicianRepo.CreateTechnician(r.Context(), &models.Technician{
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
	})
	if err != nil {
		http.Error(w, "Error creating technician", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int64{"id": id}, http.StatusCreated)
}

func (h *TechniciansHandler) UpdateTechnician(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	var req technicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Technician name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	existing, err := h.technicianRepo.GetTechnician(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Technician not found", http.StatusNotFound)
		return
	}

	updated := &models.Technician{
		ID:    id,
		Name:  req.Name,
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
	}
	if err := h.technicianRepo.UpdateTechnician(ctx, updated); err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]*models.Technician{"technician": updated}, http.StatusOK)
}

type passwordRequest struct {
	Password string `json:"password"`
}

// SetPassword resets a technician credential. Admins may reset anyone;
// technicians only themselves.
func (h *TechniciansHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid technician id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if roleFrom(ctx) != "admin" && technicianIDFrom(ctx) != id {
		http.Error(w, "Not allowed", http.StatusForbidden)
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 4 {
		http.Error(w, "Password must be at least 4 characters", http.StatusBadRequest)
		return
	}

	existing, err := h.technicianRepo.GetTechnician(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Technician not found", http.StatusNotFound)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}
	if err := h.technicianRepo.SetTechnicianPassword(ctx, id, string(hash)); err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"updated": true}, http.StatusOK)
}
