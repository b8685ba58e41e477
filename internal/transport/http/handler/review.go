package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-api/internal/application/review"
	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/transport/http/middleware"
)

// ReviewHandler handles product review endpoints. Listing approved reviews is
// public; submitting requires auth and moderation is admin-only.
type ReviewHandler struct {
	svc *review.Service
}

func NewReviewHandler(svc *review.Service) *ReviewHandler { return &ReviewHandler{svc: svc} }

func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ListApproved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in domain.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rev, err := h.svc.Submit(r.Context(), claims.UserID, chi.URLParam(r, "id"), &in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListPending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	rev, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "review deleted"})
}
