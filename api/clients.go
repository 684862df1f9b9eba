package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

type ClientsHandler struct {
	clientRepo repository.ClientRepo
}

func NewClientsHandler(cr repository.ClientRepo) *ClientsHandler {
	return &ClientsHandler{clientRepo: cr}
}

func (h *ClientsHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientRepo.ListClients(r.Context())
	if err != nil {
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	writeJSON(w, clients, http.StatusOK)
}

type clientRequest struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	GPSLat     *float64 `json:"gps_lat"`
	GPSLng     *float64 `json:"gps_lng"`
	Phone      string   `json:"phone"`
	RobotModel string   `json:"robot_model"`
}

func (h *ClientsHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Client name is required", http.StatusBadRequest)
		return
	}

	id, err := h.clientRepo.CreateClient(r.Context(), &models.Client{
		Name:       req.Name,
		Address:    req.Address,
		GPSLat:     req.GPSLat,
		GPSLng:     req.GPSLng,
		Phone:      req.Phone,
		RobotModel: req.RobotModel,
	})
	if err != nil {
		http.Error(w, "Error creating client", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int64{"id": id}, http.StatusCreated)
}

func (h *ClientsHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid client id", http.StatusBadRequest)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Client name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	existing, err := h.clientRepo.GetClient(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	updated := &models.Client{
		ID:         id,
		Name:       req.Name,
		Address:    req.Address,
		GPSLat:     req.GPSLat,
		GPSLng:     req.GPSLng,
		Phone:      req.Phone,
		RobotModel: req.RobotModel,
	}
	if err := h.clientRepo.UpdateClient(ctx, updated); err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]*models.Client{"client": updated}, http.StatusOK)
}
