package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "linkr/internal/api/context"
	"linkr/internal/engine/analytics"
	"linkr/internal/engine/links"
	apperrors "linkr/internal/pkg/errors"
)

type AnalyticsHandler struct {
	links     *links.Service
	analytics *analytics.Service
}

func NewAnalyticsHandler(linkService *links.Service, analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		links:     linkService,
		analytics: analyticsService,
	}
}

// Stats serves the usage snapshot for a code or alias. Expired links still
// report their history; only codes that never existed 404.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	identifier := params.ByName("code")

	link, err := h.links.GetLink(r.Context(), identifier)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	snapshot, err := h.analytics.Snapshot(r.Context(), link.Code)
	if err != nil {
		apperrors.WriteFromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
