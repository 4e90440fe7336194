package handler

import (
	"encoding/json"
	"net/http"

	"eventhub/internal/api/middleware"
	"eventhub/internal/app/service"
	"eventhub/internal/common"

	"github.com/go-chi/chi/v5"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(es *service.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

func (h *EventHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listEvents)          // GET /api/v1/events
	r.Get("/{idOrSlug}", h.getEvent)  // GET /api/v1/events/summer-meetup

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createEvent)
		adminRouter.Put("/{eventID}", h.updateEvent)
		adminRouter.Delete("/{eventID}", h.deleteEvent)
	})
}

func (h *EventHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	event, err := h.eventService.Create(r.Context(), identity, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) updateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	event, err := h.eventService.Update(r.Context(), identity, chi.URLParam(r, "eventID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, event)
}

func (h *EventHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.eventService.Delete(r.Context(), identity, chi.URLParam(r, "eventID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, events)
}

func (h *EventHandler) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, event)
}
