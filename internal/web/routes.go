package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-engine/internal/web/handlers"
)

// createdBy is recorded on users registered over the API
const createdBy = "api"

func (s *Server) setupRoutes() {
	a := s.app

	authHandler := handlers.NewAuthHandler(&a.Config.Admin)
	usersHandler := handlers.NewUsersHandler(a.Users, a.Registrar, createdBy)
	camerasHandler := handlers.NewCamerasHandler(a.Cameras)
	logsHandler := handlers.NewLogsHandler(a.Logs)
	recognitionHandler := handlers.NewRecognitionHandler(a.Recognizer)
	healthHandler := handlers.NewHealthHandler(a)
	portraitFiles := handlers.NewFilesHandler(a.Portraits.FS())
	snapshotFiles := handlers.NewFilesHandler(a.Snapshots.FS())

	s.router.Get("/health", healthHandler.Check)
	s.router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	s.router.Post("/login", authHandler.Login)

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", usersHandler.List)
		r.Post("/", usersHandler.Create)
		r.Get("/{id}", usersHandler.Get)
	})

	s.router.Route("/cameras", func(r chi.Router) {
		r.Get("/", camerasHandler.List)
		r.Post("/", camerasHandler.Create)
		r.Get("/{id}", camerasHandler.Get)
		r.Put("/{id}", camerasHandler.Update)
		r.Delete("/{id}", camerasHandler.Delete)
	})

	s.router.Get("/recognition-logs", logsHandler.List)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/receive", recognitionHandler.Receive)
		r.Post("/cameras/{camera_id}/recognize", recognitionHandler.RecognizeCamera)
	})

	s.router.Get("/uploads/portraits/{filename}", portraitFiles.Serve)
	s.router.Get("/uploads/face-capture/{filename}", snapshotFiles.Serve)
}
