package ledger

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nservico/nservico/internal/platform/httpx"
)

const maxUploadBytes = 10 << 20

// Handler wires the notas endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers notas routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.append)
	r.Post("/delete", h.remove)
	r.Post("/upload", h.upload)
}

type appendForm struct {
	Data         string `validate:"required"`
	HoraInicio   string `validate:"required"`
	HoraFim      string `validate:"required"`
	Tempo        string `validate:"required_without=TempoMinutos"`
	TempoMinutos string `validate:"required_without=Tempo"`
	Cliente      string `validate:"required"`
	NIF          string `validate:"required"`
	Entidade     string
	Descricao    string
	PrecoHora    string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list notas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": records})
}

func (h *Handler) append(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	form := appendForm{
		Data:         r.PostFormValue(ColData),
		HoraInicio:   r.PostFormValue(ColHoraInicio),
		HoraFim:      r.PostFormValue(ColHoraFim),
		Tempo:        r.PostFormValue(ColTempo),
		TempoMinutos: r.PostFormValue(ColTempoMinutos),
		Cliente:      r.PostFormValue(ColCliente),
		NIF:          r.PostFormValue(ColNIF),
		Entidade:     r.PostFormValue(ColEntidade),
		Descricao:    r.PostFormValue(ColDescricao),
		PrecoHora:    r.PostFormValue(ColPrecoHora),
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	// Run through the normalizer so manual input gets the same padding,
	// decimal handling and duration derivation as bulk imports.
	entry := Normalize(formRow(r), h.service.aliases)
	entry.Exported = ExportedNo
	if _, err := h.service.Append(r.Context(), entry); err != nil {
		h.logger.Error("append nota", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ref := Normalize(formRow(r), h.service.aliases)
	ref.ID = r.PostFormValue(ColID)
	ref.Exported = NormalizeExported(r.PostFormValue(ColExportado))
	if err := h.service.Delete(r.Context(), ref); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	file, header, err := r.FormFile("file")
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
	rows, err := ParseUpload(header.Filename, data)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	mode := r.PostFormValue("mode")
	if mode == "" {
		mode = ModeAppend
	}
	result, err := h.service.Import(r.Context(), rows, mode)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"accepted": result.Accepted,
		"dropped":  result.Dropped,
	})
}

// formRow exposes the posted canonical fields as a header-keyed row for the
// normalizer.
func formRow(r *http.Request) map[string]string {
	row := make(map[string]string, len(Columns))
	for _, col := range Columns {
		if col == ColID {
			continue
		}
		row[col] = r.PostFormValue(col)
	}
	return row
}
