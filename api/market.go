package api

import (
	"context"
	"net/http"

	"github.com/garnizeh/jobmatch/internal/matching"
	"github.com/garnizeh/jobmatch/pkg/models"
)

// MarketHandler exposes the matching service over HTTP. Handlers only
// decode input and map results; every rule lives in the service.
type MarketHandler struct {
	svc *matching.Service
}

func NewMarketHandler(svc *matching.Service) *MarketHandler {
	return &MarketHandler{svc: svc}
}

func requireActor(w http.ResponseWriter, r *http.Request) (matching.Actor, bool) {
	a, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
	}
	return a, ok
}

type pairRequest struct {
	ProfileID int64 `json:"profile_id"`
	OfferID   int64 `json:"offer_id"`
}

type sendOfferRequest struct {
	ProfileID int64 `json:"profile_id"`
}

func (h *MarketHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in matching.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.CreateProfile(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *MarketHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListProfiles(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MarketHandler) SetMainProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid profile id")
		return
	}
	p, err := h.svc.SetMainProfile(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MarketHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in matching.OfferInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.CreateOffer(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *MarketHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListOffers(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MarketHandler) ListActiveOffers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListActiveOffers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MarketHandler) ArchiveOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid offer id")
		return
	}
	o, err := h.svc.ArchiveOffer(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *MarketHandler) ProposeMatch(w http.ResponseWriter, r *http.Request) {
	h.pair(w, r, h.svc.ProposeMatch)
}

func (h *MarketHandler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	h.pair(w, r, h.svc.ConfirmMatch)
}

func (h *MarketHandler) pair(w http.ResponseWriter, r *http.Request, op func(context.Context, matching.Actor, int64, int64) (*models.Match, error)) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req pairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ProfileID <= 0 || req.OfferID <= 0 {
		writeError(w, http.StatusBadRequest, "profile_id and offer_id are required")
		return
	}

	m, err := op(r.Context(), actor, req.ProfileID, req.OfferID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MarketHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListMatches(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MarketHandler) SendOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req sendOfferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ProfileID <= 0 {
		writeError(w, http.StatusBadRequest, "profile_id is required")
		return
	}

	out, err := h.svc.SendOffer(r.Context(), actor, req.ProfileID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MarketHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	offerAction(w, r, h.svc.AcceptOffer)
}

func (h *MarketHandler) DeclineOffer(w http.ResponseWriter, r *http.Request) {
	offerAction(w, r, h.svc.DeclineOffer)
}

func (h *MarketHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	offerAction(w, r, h.svc.WithdrawOffer)
}

func offerAction[T any](w http.ResponseWriter, r *http.Request, op func(context.Context, matching.Actor, int64) (*T, error)) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid offer id")
		return
	}

	out, err := op(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
