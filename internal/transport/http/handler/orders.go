package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boutique-api/internal/application/order"
	"github.com/boutique-api/internal/application/user"
	"github.com/boutique-api/internal/domain"
	"github.com/boutique-api/internal/transport/http/middleware"
)

// OrderHandler handles the order lifecycle endpoints.
type OrderHandler struct {
	svc   *order.Service
	users *user.Service
}

func NewOrderHandler(svc *order.Service, users *user.Service) *OrderHandler {
	return &OrderHandler{svc: svc, users: users}
}

type checkoutRequest struct {
	AddressID       string `json:"address_id"`
	PaymentMode     string `json:"payment_mode"`
	PaymentIntentID string `json:"payment_intent_id"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	o, err := h.svc.Create(r.Context(), order.CreateInput{
		UserID:          claims.UserID,
		UserEmail:       u.Email,
		AddressID:       req.AddressID,
		PaymentMode:     req.PaymentMode,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orders, err := h.svc.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := claims.UserID
	if claims.Role == domain.RoleAdmin {
		userID = ""
	}
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	o, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	o, err := h.svc.RequestReturn(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orderID := chi.URLParam(r, "id")
	existing, err := h.svc.Get(r.Context(), orderID, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	email := ""
	if u, err := h.users.Get(r.Context(), existing.UserID); err == nil {
		email = u.Email
	}

	o, err := h.svc.AdminSetStatus(r.Context(), orderID, req.Status, email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
