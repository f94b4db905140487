package permission

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/resonance-events/resonance-access/internal/catalog"
	"github.com/resonance-events/resonance-access/internal/platform/httpx"
)

// Check outcomes recorded in metrics.
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Metrics records evaluation outcomes.
type Metrics interface {
	ObserveCheck(outcome string)
}

// Handler exposes the permission check endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  Metrics
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/check", h.check)
}

type checkResponse struct {
	HasPermission  bool               `json:"hasPermission"`
	Tier           string             `json:"tier,omitempty"`
	Conditions     catalog.Conditions `json:"conditions,omitempty"`
	Reason         string             `json:"reason,omitempty"`
	UsageRemaining *int64             `json:"usageRemaining,omitempty"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	evaluationID := uuid.NewString()
	w.Header().Set("X-Evaluation-Id", evaluationID)
	logger := h.logger.With(slog.String("evaluation_id", evaluationID))

	var req CheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.observe(OutcomeError)
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.observe(OutcomeError)
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId, feature and action are required")
		return
	}

	result, err := h.service.Check(r.Context(), req)
	if err != nil {
		h.respondCheckError(w, logger, req, err)
		return
	}

	outcome := OutcomeDenied
	if result.HasPermission {
		outcome = OutcomeGranted
	}
	h.observe(outcome)
	logger.Info("permission check",
		slog.String("user_id", req.UserID),
		slog.String("feature", req.Feature),
		slog.String("action", req.Action),
		slog.String("outcome", outcome),
		slog.String("tier", result.Tier),
	)

	httpx.JSON(w, http.StatusOK, checkResponse{
		HasPermission:  result.HasPermission,
		Tier:           result.Tier,
		Conditions:     result.Conditions,
		Reason:         result.Reason,
		UsageRemaining: result.UsageRemaining,
	})
}

func (h *Handler) respondCheckError(w http.ResponseWriter, logger *slog.Logger, req CheckRequest, err error) {
	h.observe(OutcomeError)
	var notFound *NotFoundError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId, feature and action are required")
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", notFound.Error())
	default:
		logger.Error("permission check failed",
			slog.String("user_id", req.UserID),
			slog.String("feature", req.Feature),
			slog.Any("error", err),
		)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveCheck(outcome)
	}
}
