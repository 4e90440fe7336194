package handler

import (
	"encoding/json"
	"net/http"

	"eventhub/internal/api/middleware"
	"eventhub/internal/app/service"
	"eventhub/internal/common"
	"eventhub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type RegistrationHandler struct {
	regService *service.RegistrationService
}

func NewRegistrationHandler(rs *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regService: rs}
}

func (h *RegistrationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Post("/", h.register)                    // POST /api/v1/registrations
	r.Delete("/{registrationID}", h.cancel)    // DELETE /api/v1/registrations/{id}
	r.Get("/me", h.listMine)                   // GET /api/v1/registrations/me

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Put("/{registrationID}/checkin", h.checkIn)
		adminRouter.Put("/{registrationID}/checkout", h.checkOut)
		adminRouter.Get("/event/{eventID}", h.listForEvent)
	})
}

type registerRequest struct {
	EventID string `json:"event_id"`
}

func (h *RegistrationHandler) register(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	reg, err := h.regService.Register(r.Context(), identity, req.EventID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.regService.Cancel(r.Context(), identity, chi.URLParam(r, "registrationID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	regs, err := h.regService.ListForUser(r.Context(), identity)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if regs == nil {
		regs = []model.UserRegistration{}
	}
	common.RespondWithJSON(w, http.StatusOK, regs)
}

func (h *RegistrationHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.setCheckIn(w, r, true)
}

func (h *RegistrationHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.setCheckIn(w, r, false)
}

func (h *RegistrationHandler) setCheckIn(w http.ResponseWriter, r *http.Request, checkIn bool) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var reg *model.Registration
	var err error
	if checkIn {
		reg, err = h.regService.CheckIn(r.Context(), identity, chi.URLParam(r, "registrationID"))
	} else {
		reg, err = h.regService.CheckOut(r.Context(), identity, chi.URLParam(r, "registrationID"))
	}
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reg)
}

func (h *RegistrationHandler) listForEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	regs, err := h.regService.ListForEvent(r.Context(), identity, chi.URLParam(r, "eventID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if regs == nil {
		regs = []model.EventRegistration{}
	}
	common.RespondWithJSON(w, http.StatusOK, regs)
}
