package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/config"
	"github.com/slotdesk/slotdesk/internal/database"
	"github.com/slotdesk/slotdesk/internal/redislock"
)

// Application wires configuration, database, redis, router, and server
// lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
	deps   *Dependencies
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	// db will be closed when server shuts down; defer not possible here, leave to process exit.
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}

	rdb, err := redislock.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, rdb, cfg)

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, deps: deps}, nil
}

// Run starts the reminder scheduler and the HTTP server, and blocks.
func (a *Application) Run() error {
	if a.cfg.Reminders.Enabled {
		if err := a.deps.ReminderScheduler.Start(); err != nil {
			return err
		}
		defer a.deps.ReminderScheduler.Stop()
	}

	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
