package usage

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/resonance-events/resonance-access/internal/platform/httpx"
)

// Handler exposes the usage tracking endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers usage routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/increment", h.increment)
	r.Get("/{userID}", h.todayForUser)
}

type incrementRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Feature string `json:"feature" validate:"required"`
	Action  string `json:"action" validate:"required"`
}

func (h *Handler) increment(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId, feature and action are required")
		return
	}
	count, err := h.service.Increment(r.Context(), req.UserID, req.Feature, req.Action)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown user, feature or action")
			return
		}
		h.logger.Error("usage increment", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"usageCount": count})
}

type recordView struct {
	Feature   string `json:"feature"`
	Action    string `json:"action"`
	UsageDate string `json:"usageDate"`
	Count     int64  `json:"count"`
}

func (h *Handler) todayForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	records, err := h.service.TodayForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list usage", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			Feature:   rec.Feature,
			Action:    rec.Action,
			UsageDate: rec.UsageDate.Format(time.DateOnly),
			Count:     rec.Count,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"userId": userID, "usage": views})
}
