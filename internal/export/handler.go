package export

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/nservico/nservico/internal/platform/httpx"
)

// Handler wires the XML preview and export endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	preview singleflight.Group
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers xml routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/preview", h.handlePreview)
	r.Post("/export", h.handleExport)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	// Concurrent previews render the same pending set; collapse them.
	v, err, _ := h.preview.Do("preview", func() (any, error) {
		return h.service.Preview(r.Context())
	})
	if err != nil {
		h.logger.Error("preview xml", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"xml": v.(string)})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	clear := parseBoolFlag(r.PostFormValue("limpar"))

	result, err := h.service.Export(r.Context(), clear)
	if err != nil {
		h.logger.Error("export xml", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result.Exported == 0 {
		httpx.JSON(w, http.StatusOK, map[string]any{"file": nil})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"file":      result.File,
		"generated": result.Generated,
		"exported":  result.Exported,
	})
}

func parseBoolFlag(s string) bool {
	if s == "on" {
		return true
	}
	v, err := strconv.ParseBool(s)
	return err == nil && v
}
