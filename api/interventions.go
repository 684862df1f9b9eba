package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/marchal/fieldplanner/internal/events"
	"github.com/marchal/fieldplanner/internal/schedule"
	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

// ScopeCalendar is the event-bus scope published after every intervention
// mutation; subscribers re-fetch whatever calendar view they hold.
const ScopeCalendar = "calendar"

type InterventionsHandler struct {
	svc              *schedule.Service
	interventionRepo repository.InterventionRepo
	noteRepo         repository.NoteRepo
	photoRepo        repository.PhotoRepo
	bus              *events.Bus
}

func NewInterventionsHandler(
	svc *schedule.Service,
	ir repository.InterventionRepo,
	nr repository.NoteRepo,
	pr repository.PhotoRepo,
	bus *events.Bus,
) *InterventionsHandler {
	return &InterventionsHandler{svc: svc, interventionRepo: ir, noteRepo: nr, photoRepo: pr, bus: bus}
}

// ListInterventions serves the range query feeding the weekly grid. Either
// explicit ?start=&end= bounds or a ?date= that expands to the week
// containing that date; with neither, every intervention is returned.
func (h *InterventionsHandler) ListInterventions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	if date := q.Get("date"); date != "" && (start == "" || end == "") {
		t, err := schedule.ParseStamp(date, h.svc.Location())
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		monday, sunday := schedule.WeekBounds(t)
		start = schedule.FormatStamp(monday)
		end = sunday.Format("2006-01-02") + "T23:59:59"
	}

	list, err := h.interventionRepo.ListInterventions(r.Context(), start, end)
	if err != nil {
		http.Error(w, "failed to list interventions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Intervention{}
	}

	writeJSON(w, list, http.StatusOK)
}

// GetIntervention returns the record with its notes and photos.
func (h *InterventionsHandler) GetIntervention(w http.ResponseWriter, r *http.Request) {
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

	notes, err := h.noteRepo.ListNotesByIntervention(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}

	photos, err := h.photoRepo.ListPhotosByIntervention(ctx, id)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}
	if photos == nil {
		photos = []models.Photo{}
	}

	writeJSON(w, map[string]any{
		"intervention": iv,
		"notes":        notes,
		"photos":       photos,
	}, http.StatusOK)
}

type createInterventionRequest struct {
	ClientID        int64  `json:"client_id"`
	TechnicianID    *int64 `json:"technician_id"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
}

func (h *InterventionsHandler) CreateIntervention(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if err := validatePayload(ctx, createInterventionRS, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req createInterventionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	iv, err := h.svc.Create(ctx, schedule.CreateInput{
		ClientID:        req.ClientID,
		TechnicianID:    req.TechnicianID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		Priority:        req.Priority,
		Description:     strings.TrimSpace(req.Description),
	})
	if err != nil {
		respondScheduleError(w, err)
		return
	}

	h.bus.Publish(ScopeCalendar)
	writeJSON(w, map[string]int64{"id": iv.ID}, http.StatusCreated)
}

type updateInterventionRequest struct {
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	ScheduledAt string `json:"scheduled_at"`
}

// UpdateIntervention is the full-replace PUT: all four mutable fields are
// resent on every call, including plain reschedules.
func (h *InterventionsHandler) UpdateIntervention(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid intervention id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if err := validatePayload(ctx, updateInterventionRS, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateInterventionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	iv, err := h.svc.Update(ctx, id, schedule.UpdateInput{
		Status:      req.Status,
		Priority:    req.Priority,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		respondScheduleError(w, err)
		return
	}

	h.bus.Publish(ScopeCalendar)
	writeJSON(w, iv, http.StatusOK)
}

type moveRequest struct {
	Day  string `json:"day"`
	Hour string `json:"hour"`
}

// MoveIntervention applies a drag-and-drop gesture: the target grid cell is
// composed back into a schedule instant and the record rescheduled there.
func (h *InterventionsHandler) MoveIntervention(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid intervention id", http.StatusBadRequest)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	iv, err := h.svc.MoveToCell(r.Context(), id, req.Day, req.Hour)
	if err != nil {
		respondScheduleError(w, err)
		return
	}

	h.bus.Publish(ScopeCalendar)
	writeJSON(w, iv, http.StatusOK)
}

// Planning projects a week of interventions into the day-by-hour grid the
// calendar UI renders directly.
func (h *InterventionsHandler) Planning(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	loc := h.svc.Location()

	base := time.Now().In(loc)
	if date != "" {
		t, err := schedule.ParseStamp(date, loc)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		base = t
	}

	monday, sunday := schedule.WeekBounds(base)
	start := schedule.FormatStamp(monday)
	end := sunday.Format("2006-01-02") + "T23:59:59"

	list, err := h.interventionRepo.ListInterventions(r.Context(), start, end)
	if err != nil {
		http.Error(w, "failed to list interventions", http.StatusInternalServerError)
		return
	}

	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, monday.AddDate(0, 0, i).Format("2006-01-02"))
	}

	writeJSON(w, map[string]any{
		"week_start": days[0],
		"week_end":   days[6],
		"days":       days,
		"grid":       schedule.Project(list, monday, loc),
	}, http.StatusOK)
}

type noteRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

func (h *InterventionsHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid intervention id", http.StatusBadRequest)
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "note content is required", http.StatusBadRequest)
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

	noteID, err := h.noteRepo.CreateNote(ctx, &models.Note{
		InterventionID: id,
		Author:         req.Author,
		Content:        req.Content,
	})
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int64{"id": noteID}, http.StatusCreated)
}
