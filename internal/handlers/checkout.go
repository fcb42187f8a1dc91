package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ticket-storefront/internal/cartstore"
	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// CheckoutHandler handles the confirmation screen and checkout submission
type CheckoutHandler struct {
	checkout services.CheckoutSubmitter
	carts    cartstore.Store
	store    sessions.Store
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout services.CheckoutSubmitter, carts cartstore.Store, store sessions.Store, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		store:    store,
		logger:   logger,
	}
}

// checkoutRequest carries the card details entered on the checkout form
type checkoutRequest struct {
	CardHolderName string `json:"card_holder_name"`
	CardNumber     string `json:"card_number"`
	CardExpiry     string `json:"card_expiry"`
	CardCVV        string `json:"card_cvv"`
}

// checkoutResponse is the settled outcome returned to the client
type checkoutResponse struct {
	Status     string                     `json:"status"`
	Message    string                     `json:"message"`
	TotalUnits int                        `json:"total_units"`
	Succeeded  int                        `json:"succeeded"`
	Failed     int                        `json:"failed"`
	Total      string                     `json:"total,omitempty"`
	Tickets    []*models.Ticket           `json:"tickets,omitempty"`
	Failures   []services.IssuanceFailure `json:"failures,omitempty"`
}

// ShowCheckout returns the checkout confirmation payload. The totals are
// derived with the same pricing functions the cart view uses, so the amount
// shown here matches the amount on the selection screen.
func (h *CheckoutHandler) ShowCheckout(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// SubmitCheckout runs the checkout submission for the session's cart and
// reports the settled outcome. A second submit for the same cart while one
// is in flight is rejected.
func (h *CheckoutHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cartKey, err := cartKeyFromSession(h.store, w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Session error")
		return
	}

	card := &models.CardDetails{
		HolderName: req.CardHolderName,
		Number:     req.CardNumber,
		Expiry:     req.CardExpiry,
		CVV:        req.CardCVV,
	}

	result, err := h.checkout.Submit(r.Context(), cartKey, card)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionInProgress) {
			writeError(w, http.StatusConflict, "A submission for this cart is already in progress")
			return
		}
		h.logger.Error("checkout submission failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Checkout failed")
		return
	}

	resp := &checkoutResponse{
		Status:     string(result.Status),
		Message:    result.Message(),
		TotalUnits: result.TotalUnits,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Tickets:    result.Tickets,
		Failures:   result.Failures,
	}

	switch result.Status {
	case services.SubmissionAllSucceeded:
		resp.Total = result.Total.StringFixed(2)
		clearCartKey(h.store, w, r)
		writeJSON(w, http.StatusCreated, resp)
	case services.SubmissionPartiallyFailed:
		resp.Total = result.Total.StringFixed(2)
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	}
}
