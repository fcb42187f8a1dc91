package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ticket-storefront/internal/cartstore"
	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/pricing"
	"ticket-storefront/internal/services"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// PaymentHandler handles the hosted-gateway payment flow: initialize a
// redirect for the cart total, verify the payment on callback, and accept
// signed gateway webhooks.
type PaymentHandler struct {
	gateway  services.PaymentGatewayInterface
	carts    cartstore.Store
	store    sessions.Store
	currency string
	logger   *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gateway services.PaymentGatewayInterface, carts cartstore.Store, store sessions.Store, currency string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		gateway:  gateway,
		carts:    carts,
		store:    store,
		currency: currency,
		logger:   logger,
	}
}

// InitiatePayment creates a gateway payment for the session's cart total
// and returns the authorization URL for the client to redirect to.
func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cartKey, err := cartKeyFromSession(h.store, w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Session error")
		return
	}

	cart, err := h.carts.Get(r.Context(), cartKey)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	if cart.IsEmpty() {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	total := pricing.CartTotal(cart)
	metadata := map[string]string{
		"cart_id": cart.ID,
		"user_id": user.ID,
	}

	redirect, err := h.gateway.InitializePayment(r.Context(), user.Email, total, h.currency, metadata)
	if err != nil {
		h.logger.Error("payment initialization failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to initialize payment")
		return
	}

	writeJSON(w, http.StatusOK, redirect)
}

// VerifyPayment confirms a payment by its gateway reference after the
// client returns from the hosted payment page.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reference := r.URL.Query().Get("reference")
	if reference == "" {
		writeError(w, http.StatusBadRequest, "Payment reference is required")
		return
	}

	verification, err := h.gateway.VerifyPayment(r.Context(), reference)
	if err != nil {
		h.logger.Error("payment verification failed",
			zap.String("reference", reference),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to verify payment")
		return
	}

	if verification.Status != "success" {
		writeJSON(w, http.StatusPaymentRequired, verification)
		return
	}

	writeJSON(w, http.StatusOK, verification)
}

// HandleWebhook accepts gateway event notifications. The signature header
// is checked before the payload is parsed; a mismatch is rejected.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-Gateway-Signature")
	if !h.gateway.VerifyWebhookSignature(payload, signature) {
		h.logger.Warn("webhook signature mismatch")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	h.logger.Info("gateway webhook received", zap.String("event", event.Event))
	w.WriteHeader(http.StatusOK)
}
