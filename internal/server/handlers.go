package server

import (
	"log/slog"

	"fixture-matching/internal/cache"
	"fixture-matching/internal/classifier"
	"fixture-matching/internal/config"
	"fixture-matching/internal/database"
	"fixture-matching/internal/handlers"
	"fixture-matching/internal/parser"
	"fixture-matching/internal/services"
	"fixture-matching/internal/workers"

	"github.com/go-chi/chi/v5"
)

// HandlerSet bundles all HTTP handlers for route registration
type HandlerSet struct {
	vesselHandler     *handlers.VesselHandler
	cargoHandler      *handlers.CargoHandler
	portHandler       *handlers.PortHandler
	matchHandler      *handlers.MatchHandler
	parseHandler      *handlers.ParseHandler
	classifierHandler *handlers.ClassifierHandler
	emailHandler      *handlers.EmailHandler
	dashboardHandler  *handlers.DashboardHandler
	healthHandler     *handlers.HealthHandler
	adminHandler      *handlers.AdminHandler
	adminAPIKey       string
}

// NewHandlerSet creates all handlers sharing the given dependencies
func NewHandlerSet(
	cfg *config.Config,
	db *database.DB,
	cacheManager *cache.Manager,
	model *classifier.Ref,
	fallback parser.FallbackExtractor,
	matchUpdater *workers.MatchUpdater,
	logger *slog.Logger,
) *HandlerSet {
	criteria := cfg.MatchCriteria()
	relabeler := services.NewRelabeler(db.Emails, model, logger)

	return &HandlerSet{
		vesselHandler:     handlers.NewVesselHandler(db, cacheManager),
		cargoHandler:      handlers.NewCargoHandler(db, cacheManager),
		portHandler:       handlers.NewPortHandler(db),
		matchHandler:      handlers.NewMatchHandler(db, cfg, cacheManager, criteria),
		parseHandler:      handlers.NewParseHandler(db, model, fallback, criteria),
		classifierHandler: handlers.NewClassifierHandler(db, model),
		emailHandler:      handlers.NewEmailHandler(db),
		dashboardHandler:  handlers.NewDashboardHandler(db),
		healthHandler:     handlers.NewHealthHandler(db),
		adminHandler:      handlers.NewAdminHandler(matchUpdater, cacheManager, relabeler, logger),
		adminAPIKey:       cfg.AdminAPIKey,
	}
}

// RegisterRoutes registers all API routes with a chi router
func (hs *HandlerSet) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/vessels", hs.vesselHandler.GetVessels)
		r.Post("/vessels", hs.vesselHandler.CreateVessel)
		r.Get("/vessels/{id}", hs.vesselHandler.GetVesselByID)
		r.Put("/vessels/{id}", hs.vesselHandler.UpdateVessel)
		r.Delete("/vessels/{id}", hs.vesselHandler.DeleteVessel)

		r.Get("/cargos", hs.cargoHandler.GetCargos)
		r.Post("/cargos", hs.cargoHandler.CreateCargo)
		r.Get("/cargos/{id}", hs.cargoHandler.GetCargoByID)
		r.Put("/cargos/{id}", hs.cargoHandler.UpdateCargo)
		r.Delete("/cargos/{id}", hs.cargoHandler.DeleteCargo)

		r.Get("/ports", hs.portHandler.GetPorts)
		r.Post("/ports", hs.portHandler.CreatePort)
		r.Delete("/ports/{id}", hs.portHandler.DeletePort)

		r.Get("/matches", hs.matchHandler.GetMatches)
		r.Post("/matches/run", hs.matchHandler.RunMatches)
		r.Get("/matches/{id}", hs.matchHandler.GetMatchByID)
		r.Delete("/matches/{id}", hs.matchHandler.DeleteMatch)
		r.Post("/matches/{id}/accept", hs.matchHandler.AcceptMatch)
		r.Post("/matches/{id}/reject", hs.matchHandler.RejectMatch)

		r.Post("/parse", hs.parseHandler.Parse)

		r.Post("/classifier/retrain", hs.classifierHandler.Retrain)
		r.Get("/classifier/status", hs.classifierHandler.Status)

		r.Get("/emails", hs.emailHandler.GetEmails)
		r.Get("/emails/{id}", hs.emailHandler.GetEmailByID)
		r.Post("/emails/{id}/label", hs.emailHandler.LabelEmail)

		r.Get("/dashboard/stats", hs.dashboardHandler.GetStats)

		r.Get("/health", hs.healthHandler.HealthCheck)

		// Admin routes, optionally protected by a bearer token
		r.Route("/admin", func(r chi.Router) {
			if hs.adminAPIKey != "" {
				r.Use(AuthMiddleware(hs.adminAPIKey))
			}
			r.Get("/match-updater", hs.adminHandler.GetMatchUpdaterStatus)
			r.Post("/match-updater/pause", hs.adminHandler.PauseMatchUpdater)
			r.Post("/match-updater/resume", hs.adminHandler.ResumeMatchUpdater)
			r.Get("/cache", hs.adminHandler.GetCacheStats)
			r.Delete("/cache", hs.adminHandler.InvalidateCache)
			r.Post("/emails/relabel", hs.adminHandler.RelabelEmails)
		})
	})
}

// NewRouter builds the fully wired chi router with the standard middleware
// stack applied
func NewRouter(hs *HandlerSet) chi.Router {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(SecurityMiddleware)
	r.Use(CORSMiddleware)
	r.Use(ContentTypeMiddleware)

	hs.RegisterRoutes(r)
	return r
}
