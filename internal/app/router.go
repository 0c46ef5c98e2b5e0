package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nservico/nservico/internal/export"
	"github.com/nservico/nservico/internal/ledger"
	"github.com/nservico/nservico/internal/roster"
	"github.com/nservico/nservico/internal/settings"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	RosterHandler   *roster.Handler
	LedgerHandler   *ledger.Handler
	ExportHandler   *export.Handler
	SettingsHandler *settings.Handler
}

// NewRouter constructs the chi.Router with the API mounted under the base
// prefix, next to the results file server.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	prefix := params.Config.BasePrefix
	r.Route(prefix+"/api", func(r chi.Router) {
		r.Route("/clientes", params.RosterHandler.MountRoutes)
		r.Route("/notas", params.LedgerHandler.MountRoutes)
		r.Route("/xml", params.ExportHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
	})

	// Generated XML and zip artifacts are served straight from disk.
	fileServer := http.StripPrefix(prefix+"/results/", http.FileServer(http.Dir(params.Config.ResultsDir)))
	r.Handle(prefix+"/results/*", fileServer)

	return r
}
