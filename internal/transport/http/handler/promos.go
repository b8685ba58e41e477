package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-api/internal/application/promo"
	"github.com/boutique-api/internal/domain"
)

// PromoHandler handles coupon and gift card endpoints.
type PromoHandler struct {
	svc *promo.Service
}

func NewPromoHandler(svc *promo.Service) *PromoHandler { return &PromoHandler{svc: svc} }

func (h *PromoHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req domain.CouponInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.CreateCoupon(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *PromoHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCoupon(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *PromoHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.svc.ListCoupons(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *PromoHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCoupon(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "coupon deleted"})
}

func (h *PromoHandler) IssueGiftCard(w http.ResponseWriter, r *http.Request) {
	var req domain.GiftCardInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := h.svc.IssueGiftCard(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *PromoHandler) GetGiftCard(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGiftCard(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type redeemRequest struct {
	Amount string `json:"amount"`
}

func (h *PromoHandler) RedeemGiftCard(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := h.svc.RedeemGiftCard(r.Context(), chi.URLParam(r, "code"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
