package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-api/internal/application/wishlist"
	"github.com/boutique-api/internal/transport/http/middleware"
)

// WishlistHandler handles saved-product endpoints. All routes require auth;
// the wishlist is always the caller's own.
type WishlistHandler struct {
	svc *wishlist.Service
}

func NewWishlistHandler(svc *wishlist.Service) *WishlistHandler { return &WishlistHandler{svc: svc} }

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entries, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Add(r.Context(), claims.UserID, chi.URLParam(r, "productID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "added to wishlist"})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Remove(r.Context(), claims.UserID, chi.URLParam(r, "productID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "removed from wishlist"})
}
