package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/marchal/fieldplanner/internal/events"
	"github.com/marchal/fieldplanner/internal/schedule"
	"github.com/marchal/fieldplanner/pkg/models"
	"github.com/marchal/fieldplanner/pkg/repository"
)

// CalendarHandler serves the read-only ICS export feed. Serialized feeds are
// cached per requested range and the cache is flushed whenever any
// intervention mutation is published on the bus.
type CalendarHandler struct {
	interventionRepo repository.InterventionRepo
	loc              *time.Location

	mu    sync.Mutex
	cache map[string]string
}

// NewCalendarHandler starts the invalidation listener; it stops when ctx is
// cancelled.
func NewCalendarHandler(ctx context.Context, ir repository.InterventionRepo, bus *events.Bus, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.Local
	}
	h := &CalendarHandler{
		interventionRepo: ir,
		loc:              loc,
		cache:            make(map[string]string),
	}

	ch := bus.Subscribe(ScopeCalendar)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				h.mu.Lock()
				h.cache = make(map[string]string)
				h.mu.Unlock()
			}
		}
	}()

	return h
}

// Feed renders interventions as an iCalendar document. ?start= and ?end=
// narrow the range; with neither, the whole schedule is exported.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	key := start + "|" + end

	h.mu.Lock()
	cached, ok := h.cache[key]
	h.mu.Unlock()

	if ok {
		serveICS(w, cached)
		return
	}

	list, err := h.interventionRepo.ListInterventions(r.Context(), start, end)
	if err != nil {
		http.Error(w, "the action could not be completed right now", http.StatusInternalServerError)
		return
	}

	serialized := h.render(list)

	h.mu.Lock()
	h.cache[key] = serialized
	h.mu.Unlock()

	serveICS(w, serialized)
}

func (h *CalendarHandler) render(list []models.Intervention) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//fieldplanner//planning//EN")

	for _, iv := range list {
		start, err := schedule.ParseStamp(iv.ScheduledAt, h.loc)
		if err != nil {
			continue
		}
		duration := iv.DurationMinutes
		if duration <= 0 {
			duration = models.DefaultDurationMinutes
		}

		ev := cal.AddEvent(fmt.Sprintf("intervention-%d@fieldplanner", iv.ID))
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Duration(duration) * time.Minute))
		ev.SetSummary(eventSummary(iv))
		if iv.Description != "" {
			ev.SetDescription(iv.Description)
		}
	}

	return cal.Serialize()
}

func eventSummary(iv models.Intervention) string {
	summary := iv.ClientName
	if summary == "" {
		summary = fmt.Sprintf("Intervention #%d", iv.ID)
	}
	if iv.TechnicianName != "" {
		summary += " / " + iv.TechnicianName
	}

	return summary
}

func serveICS(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planning.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
