package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nservico/nservico/internal/platform/httpx"
)

// AdminPasswordHeader carries the admin credential on guarded endpoints.
const AdminPasswordHeader = "X-Admin-Password"

// Handler wires the settings endpoints.
type Handler struct {
	logger    *slog.Logger
	store     *Store
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store, validator: validator.New()}
}

// MountRoutes registers settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/", h.update)
	r.Post("/verify", h.verify)
}

type erpView struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	User    string `json:"user"`
	Service string `json:"service"`
}

type updateRequest struct {
	AdminPassword string `json:"admin_password" validate:"omitempty,min=8"`
	ERP           struct {
		Host     string `json:"host"`
		Port     int    `json:"port" validate:"required,min=1,max=65535"`
		User     string `json:"user"`
		Password string `json:"password"`
		Service  string `json:"service" validate:"required"`
	} `json:"erp"`
}

func (h *Handler) guard(w http.ResponseWriter, r *http.Request) bool {
	if err := h.store.VerifyAdmin(r.Header.Get(AdminPasswordHeader)); err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return false
	}
	return true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	settings, err := h.store.Load()
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	// Credentials never leave the server: the admin hash is omitted and the
	// ERP password is masked.
	httpx.JSON(w, http.StatusOK, map[string]any{
		"erp": erpView{
			Host:    settings.ERP.Host,
			Port:    settings.ERP.Port,
			User:    settings.ERP.User,
			Service: settings.ERP.Service,
		},
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	settings, err := h.store.Load()
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	settings.ERP = ERP(req.ERP)
	if err := h.store.Save(settings); err != nil {
		h.logger.Error("save settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if req.AdminPassword != "" {
		if err := h.store.SetAdminPassword(req.AdminPassword); err != nil {
			h.logger.Error("rotate admin password", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.OK(w)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.store.VerifyAdmin(req.Password); err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.OK(w)
}
