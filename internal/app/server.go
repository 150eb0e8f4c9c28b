package app

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markdave123-py/Moleqa/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Moleqa/internal/api/middlewares"
	"github.com/markdave123-py/Moleqa/internal/config"
	"github.com/markdave123-py/Moleqa/internal/services"
)

// Services groups what the HTTP routes call into.
type Services struct {
	Molecules *services.MoleculeService
	Analyses  *services.AnalysisService
	Users     *services.UserService
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, svc Services, reg *prometheus.Registry) http.Handler {
	moleculeHandler := handlers.NewMoleculeHandler(svc.Molecules)
	analysisHandler := handlers.NewAnalysisHandler(svc.Analyses)
	userHandler := handlers.NewUserHandler(svc.Users)
	httpMetrics := appMiddleware.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(httpMetrics.Handler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api", func(api chi.Router) {
		api.Route("/molecules", func(m chi.Router) {
			m.Post("/", moleculeHandler.SubmitMolecule)
			m.Get("/", moleculeHandler.FindMolecule)
			m.Get("/{id}", moleculeHandler.GetMolecule)
			m.Get("/{id}/analyses", analysisHandler.ListMoleculeAnalyses)
			m.Get("/{id}/file", moleculeHandler.DownloadFile)
		})

		api.Post("/analyses", analysisHandler.SubmitAnalysis)
		api.Get("/analyses/{id}", analysisHandler.GetAnalysis)

		api.Post("/users", userHandler.CreateUser)
		api.Get("/users", userHandler.FindUser)
		api.Get("/users/{id}", userHandler.GetUser)
	})

	return r
}

func NewServer(cfg *config.Config, handler http.Handler) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}}
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
