package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/boutique-api/internal/application/cart"
	"github.com/boutique-api/internal/infrastructure/payment"
	"github.com/boutique-api/internal/transport/http/middleware"
)

// PaymentHandler creates payment intents for the caller's cart total.
type PaymentHandler struct {
	payments *payment.Client
	carts    *cart.Service
}

func NewPaymentHandler(payments *payment.Client, carts *cart.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments, carts: carts}
}

type paymentIntentRequest struct {
	Currency string `json:"currency"`
}

type paymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       string `json:"amount"`
}

// CreateIntent prices the caller's cart and opens a payment intent for the
// total. The client completes the payment with the returned secret and then
// places the order referencing the intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req paymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	lines, total, err := h.carts.Lines(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	amount, err := decimal.NewFromString(total)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	intent, err := h.payments.CreateIntent(r.Context(), cents, req.Currency)
	if err != nil {
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, paymentIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       total,
	})
}
