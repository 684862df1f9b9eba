package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marchal/fieldplanner/internal/config"
	"github.com/marchal/fieldplanner/internal/db"
	"github.com/marchal/fieldplanner/internal/events"
	"github.com/marchal/fieldplanner/internal/repository/sqlite"
	"github.com/marchal/fieldplanner/internal/schedule"
	"github.com/marchal/fieldplanner/internal/uploads"
)

// SetupRoutes wires repositories, the scheduling service and every handler
// onto a router. Auth and health endpoints are open; everything under /api
// requires a valid bearer token. ctx bounds background listeners (the ICS
// cache invalidator), not request handling.
func SetupRoutes(
	ctx context.Context,
	cfg *config.Config,
	version, buildTime string,
	database *db.DB,
	files *uploads.Store,
	bus *events.Bus,
	syncer schedule.Syncer,
	loc *time.Location,
) *mux.Router {
	repo := sqlite.New(database)
	svc := schedule.NewService(repo, repo, syncer, logger, loc)

	authHandler := NewAuthHandler(repo, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenDuration)
	clientsHandler := NewClientsHandler(repo)
	techniciansHandler := NewTechniciansHandler(repo)
	interventionsHandler := NewInterventionsHandler(svc, repo, repo, repo, bus)
	photosHandler := NewPhotosHandler(repo, repo, repo, files)
	calendarHandler := NewCalendarHandler(ctx, repo, bus, loc)
	systemHandler := NewSystemHandler(version, buildTime)

	r := mux.NewRouter()
	r.Use(RecoveryMiddleware, LoggingMiddleware, CORSMiddleware)

	// Open routes.
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/version", systemHandler.Version).Methods("GET")
	r.HandleFunc("/api/auth/login", authHandler.TechnicianLogin).Methods("POST")
	r.HandleFunc("/api/auth/admin", authHandler.AdminLogin).Methods("POST")
	r.HandleFunc("/api/auth/bootstrap", authHandler.Bootstrap).Methods("POST")
	r.HandleFunc("/api/calendar.ics", calendarHandler.Feed).Methods("GET")

	// Uploaded photos are served as static files.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir()))),
	).Methods("GET")

	// Protected routes.
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	protected.HandleFunc("/clients", clientsHandler.ListClients).Methods("GET")
	protected.HandleFunc("/clients", clientsHandler.CreateClient).Methods("POST")
	protected.HandleFunc("/clients/{id}", clientsHandler.UpdateClient).Methods("PUT")
	protected.HandleFunc("/clients/{id}/photos", photosHandler.ListClientPhotos).Methods("GET")
	protected.HandleFunc("/clients/{id}/photos", photosHandler.UploadClientPhoto).Methods("POST")

	protected.HandleFunc("/technicians", techniciansHandler.ListTechnicians).Methods("GET")
	protected.HandleFunc("/technicians", techniciansHandler.CreateTechnician).Methods("POST")
	protected.HandleFunc("/technicians/{id}", techniciansHandler.UpdateTechnician).Methods("PUT")
	protected.HandleFunc("/technicians/{id}/password", techniciansHandler.SetPassword).Methods("PUT")

	protected.HandleFunc("/interventions", interventionsHandler.ListInterventions).Methods("GET")
	protected.HandleFunc("/interventions", interventionsHandler.CreateIntervention).Methods("POST")
	protected.HandleFunc("/interventions/{id}", interventionsHandler.GetIntervention).Methods("GET")
	protected.HandleFunc("/interventions/{id}", interventionsHandler.UpdateIntervention).Methods("PUT")
	protected.HandleFunc("/interventions/{id}/move", interventionsHandler.MoveIntervention).Methods("POST")
	protected.HandleFunc("/interventions/{id}/notes", interventionsHandler.CreateNote).Methods("POST")
	protected.HandleFunc("/interventions/{id}/photos", photosHandler.UploadInterventionPhoto).Methods("POST")
	protected.HandleFunc("/photos/{id}", photosHandler.DeletePhoto).Methods("DELETE")

	protected.HandleFunc("/planning", interventionsHandler.Planning).Methods("GET")

	return r
}
