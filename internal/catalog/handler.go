package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/resonance-events/resonance-access/internal/platform/httpx"
)

// Handler exposes the read-only catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/features", h.listFeatures)
	r.Get("/actions", h.listActions)
	r.Get("/tiers", h.listTiers)
}

type subFeatureView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type featureView struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	SubFeatures []subFeatureView `json:"subFeatures"`
}

func (h *Handler) listFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.service.ListFeatures(r.Context())
	if err != nil {
		h.logger.Error("list features", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]featureView, 0, len(features))
	for _, f := range features {
		subs := make([]subFeatureView, 0, len(f.SubFeatures))
		for _, sf := range f.SubFeatures {
			subs = append(subs, subFeatureView{ID: sf.ID, Name: sf.Name})
		}
		views = append(views, featureView{ID: f.ID, Name: f.Name, SubFeatures: subs})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"features": views})
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.service.ListActions(r.Context())
	if err != nil {
		h.logger.Error("list actions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(actions))
	for _, a := range actions {
		views = append(views, map[string]any{"id": a.ID, "name": a.Name})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"actions": views})
}

func (h *Handler) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.ListTiers(r.Context())
	if err != nil {
		h.logger.Error("list tiers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(tiers))
	for _, t := range tiers {
		views = append(views, map[string]any{"id": t.ID, "name": t.Name, "displayName": t.DisplayName})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tiers": views})
}
