package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/friendorbit/orbit/internal/config"
	"github.com/friendorbit/orbit/internal/store"
	"github.com/friendorbit/orbit/internal/telegram"
)

// Server is the orbit HTTP API server.
type Server struct {
	db      *store.DB
	bot     telegram.Sender
	cfg     config.TelegramConfig
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database and version string.
func New(db *store.DB, cfg config.TelegramConfig, version string) *Server {
	s := &Server{
		db:      db,
		cfg:     cfg,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// SetBot configures the outbound Telegram sender used by the webhook
// handler. The server works without one; webhook replies are skipped.
func (s *Server) SetBot(bot telegram.Sender) {
	s.bot = bot
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/telegram", s.handleAuthTelegram)
		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{telegramID}", s.handleGetUser)
		r.Patch("/users/{userID}", s.handleUpdateUser)
		r.Post("/users/{userID}/onboard", s.handleOnboardUser)

		// Everything below acts on behalf of the X-User-Id caller.
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Post("/people", s.handleCreatePerson)
			r.Get("/people", s.handleListPeople)
			r.Get("/people/{personID}", s.handleGetPerson)
			r.Patch("/people/{personID}", s.handleUpdatePerson)
			r.Post("/people/{personID}/interaction", s.handleLogInteraction)
			r.Delete("/people/{personID}", s.handleArchivePerson)

			r.Post("/meteors", s.handleCreateMeteor)
			r.Get("/meteors", s.handleListMeteors)
			r.Patch("/meteors/{meteorID}", s.handleUpdateMeteor)
			r.Delete("/meteors/{meteorID}", s.handleArchiveMeteor)

			r.Post("/battery", s.handleLogBattery)
			r.Get("/battery", s.handleGetBattery)

			r.Post("/invites", s.handleCreateInvite)

			r.Get("/stats", s.handleStats)
		})

		// The invitee is not a user yet; accept is keyed by token alone.
		r.Post("/invites/{token}/accept", s.handleAcceptInvite)

		r.Post("/telegram/webhook/{secret}", s.handleWebhook)
	})

	r.NotFound(spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
