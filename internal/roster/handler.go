package roster

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nservico/nservico/internal/platform/httpx"
)

const maxUploadBytes = 10 << 20

// Handler wires the clientes endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers clientes routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/upload", h.upload)
	r.Post("/clear", h.clear)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list clientes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": records})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.logger.Error("read upload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Replace(r.Context(), data); err != nil {
		h.logger.Error("replace roster", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.logger.Error("clear roster", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w)
}
