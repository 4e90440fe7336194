package handler

import (
	"net/http"

	"eventhub/internal/api/middleware"
	"eventhub/internal/app/service"
	"eventhub/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(ss *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/", h.getStats)
}

func (h *StatsHandler) getStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	stats, err := h.statsService.Compute(r.Context(), identity)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}
