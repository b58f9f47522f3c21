package feedback

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/formcsrf/internal/csrf"
	"github.com/odyssey-erp/formcsrf/internal/observability"
	"github.com/odyssey-erp/formcsrf/internal/platform/httpx"
	"github.com/odyssey-erp/formcsrf/internal/view"
)

// DefaultLimit is the number of entries listed below the form.
const DefaultLimit = 20

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Logger    *slog.Logger
	Service   *Service
	Templates *view.Engine
	// CSRFSecret signs the hidden fields bound to every rendered form.
	CSRFSecret string
	Limit      int
	Metrics    *observability.Metrics
}

// Handler serves the feedback form. Submissions must already have passed
// csrf.Guard; the handler only binds fresh pairs when rendering.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	secret    string
	limit     int
	metrics   *observability.Metrics
}

// NewHandler constructs a Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Handler{
		logger:    logger,
		service:   cfg.Service,
		templates: cfg.Templates,
		secret:    cfg.CSRFSecret,
		limit:     limit,
		metrics:   cfg.Metrics,
	}
}

// MountRoutes registers feedback routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showForm)
	r.Post("/", h.submit)
	r.Get("/{id}", h.showEntry)
}

// PageData is the template payload for pages/feedback.html.
type PageData struct {
	Input   Input
	Errors  map[string]string
	Entries []Entry
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	var flash *view.FlashMessage
	if r.URL.Query().Get("sent") == "1" {
		flash = &view.FlashMessage{Kind: "success", Message: "Thanks, your feedback was received."}
	}
	h.render(w, r, http.StatusOK, PageData{}, flash)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := Input{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	entry, err := h.service.Submit(r.Context(), input)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.render(w, r, http.StatusBadRequest, PageData{Input: input, Errors: verr.Fields}, nil)
			return
		}
		h.logger.Error("submit feedback", slog.Any("error", err))
		h.render(w, r, http.StatusInternalServerError, PageData{
			Input:  input,
			Errors: map[string]string{"general": "Feedback could not be saved, please try again"},
		}, nil)
		return
	}
	h.logger.Info("feedback received", slog.String("id", entry.ID.String()))
	http.Redirect(w, r, r.URL.Path+"?sent=1", http.StatusSeeOther)
}

func (h *Handler) showEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, fmt.Errorf("%w: feedback %s", httpx.ErrNotFound, id))
			return
		}
		h.logger.Error("get feedback", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// render binds a fresh CSRF pair to the form before writing the page. A
// generation failure aborts the response rather than emitting a weak form.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data PageData, flash *view.FlashMessage) {
	form, err := csrf.Apply(view.NewForm(r.URL.Path), h.secret)
	if err != nil {
		h.logger.Error("bind csrf fields", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.metrics.CSRFIssued()

	if data.Entries == nil {
		entries, err := h.service.Recent(r.Context(), h.limit)
		if err != nil {
			h.logger.Warn("list feedback", slog.Any("error", err))
		}
		data.Entries = entries
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/feedback.html", view.TemplateData{
		Title:       "Feedback",
		Form:        form,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render feedback", slog.Any("error", err))
	}
}

// ShowFormForTest exposes the GET handler for tests.
func (h *Handler) ShowFormForTest(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r)
}

// SubmitForTest exposes the POST handler for tests.
func (h *Handler) SubmitForTest(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r)
}
