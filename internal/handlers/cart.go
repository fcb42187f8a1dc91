package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ticket-storefront/internal/cartstore"
	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/monitoring"
	"ticket-storefront/internal/pricing"
	"ticket-storefront/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// CartHandler handles the selection-screen cart operations
type CartHandler struct {
	backend services.TicketingBackendInterface
	carts   cartstore.Store
	store   sessions.Store
	logger  *zap.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(backend services.TicketingBackendInterface, carts cartstore.Store, store sessions.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		backend: backend,
		carts:   carts,
		store:   store,
		logger:  logger,
	}
}

// cartLineRequest represents an add/update request for one cart line
type cartLineRequest struct {
	TicketTypeID int `json:"ticket_type_id"`
	Quantity     int `json:"quantity"`
}

// promotionRequest represents a promotion code application request
type promotionRequest struct {
	Code string `json:"code"`
}

// CartView is the cart as rendered for the client, with all amounts
// derived by the shared pricing functions.
type CartView struct {
	EventID       int            `json:"event_id"`
	EventTitle    string         `json:"event_title"`
	Lines         []CartLineView `json:"lines"`
	PromotionCode string         `json:"promotion_code,omitempty"`
	Total         string         `json:"total"`
	ExpiresAt     int64          `json:"expires_at,omitempty"`
}

// CartLineView is one cart line with its reconciled prices
type CartLineView struct {
	TicketTypeID  int    `json:"ticket_type_id"`
	TicketName    string `json:"ticket_name"`
	Quantity      int    `json:"quantity"`
	UnitPriceBase string `json:"unit_price_base"`
	UnitPrice     string `json:"unit_price"`
	Subtotal      string `json:"subtotal"`
}

// AddToCart adds tickets to the cart for the event in the URL
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	eventID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be greater than 0")
		return
	}

	ticketType, err := h.findTicketType(r, eventID, req.TicketTypeID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	if !ticketType.IsAvailable() {
		writeError(w, http.StatusBadRequest, "Tickets are not available")
		return
	}

	cartKey, err := cartKeyFromSession(h.store, w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Session error")
		return
	}

	cart, err := h.carts.Get(r.Context(), cartKey)
	if err != nil {
		if !errors.Is(err, models.ErrCartNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to load cart")
			return
		}
		cart = &models.Cart{ID: uuid.New().String()}
	}

	// a cart holds tickets for a single event; switching events starts over
	if cart.EventID != 0 && cart.EventID != eventID {
		cart = &models.Cart{ID: uuid.New().String()}
	}

	if cart.EventID == 0 {
		event, err := h.backend.GetEvent(r.Context(), eventID)
		if err != nil {
			h.writeLookupError(w, err)
			return
		}
		cart.EventID = eventID
		cart.EventTitle = event.Title
	}

	newQuantity := req.Quantity
	if line := cart.FindLine(req.TicketTypeID); line != nil {
		newQuantity += line.Quantity
	}

	if newQuantity > ticketType.Remaining {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Only %d tickets available", ticketType.Remaining))
		return
	}

	h.setLine(cart, ticketType, newQuantity)

	if err := h.saveCart(r, cartKey, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// ViewCart returns the cart with reconciled totals
func (h *CartHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cart, _, err := h.loadCart(w, r)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			writeJSON(w, http.StatusOK, buildCartView(&models.Cart{}))
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// UpdateCartLine sets the quantity for one line; quantity 0 removes it
func (h *CartHandler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "Invalid quantity")
		return
	}

	cart, cartKey, err := h.loadCart(w, r)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	line := cart.FindLine(req.TicketTypeID)
	if line == nil {
		writeError(w, http.StatusNotFound, "Ticket type not in cart")
		return
	}

	if req.Quantity == 0 {
		h.removeLine(cart, req.TicketTypeID)
	} else {
		if req.Quantity > line.Remaining {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Only %d tickets available", line.Remaining))
			return
		}
		line.Quantity = req.Quantity
	}

	if err := h.saveCart(r, cartKey, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// ApplyPromotion validates a promotion code against the backend and attaches
// it to the cart. A rejected code leaves the cart undiscounted and does not
// block checkout.
func (h *CartHandler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Promotion code is required")
		return
	}

	cart, cartKey, err := h.loadCart(w, r)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	// the code is passed to the backend verbatim, case preserved
	promo, err := h.backend.ValidatePromotion(r.Context(), req.Code, cart.EventID)
	if err != nil {
		if errors.Is(err, models.ErrPromotionRejected) {
			monitoring.PromotionRejectedTotal.Inc()
			cart.Promotion = nil
			if putErr := h.saveCart(r, cartKey, cart); putErr != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save cart")
				return
			}
			writeError(w, http.StatusUnprocessableEntity, "Promotion code is invalid or expired")
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to validate promotion")
		return
	}

	cart.Promotion = promo
	if err := h.saveCart(r, cartKey, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// RemovePromotion detaches the promotion from the cart
func (h *CartHandler) RemovePromotion(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cart, cartKey, err := h.loadCart(w, r)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	cart.Promotion = nil
	if err := h.saveCart(r, cartKey, cart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(cart))
}

// ClearCart removes the cart entirely
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
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

	if err := h.carts.Delete(r.Context(), cartKey); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	writeJSON(w, http.StatusOK, buildCartView(&models.Cart{}))
}

// Helper methods

// saveCart persists the cart and restarts the handoff window. ExpiresAt is
// refreshed together with the store TTL so the two cannot disagree.
func (h *CartHandler) saveCart(r *http.Request, cartKey string, cart *models.Cart) error {
	cart.ExpiresAt = time.Now().Add(cartstore.DefaultTTL).Unix()
	return h.carts.Put(r.Context(), cartKey, cart, cartstore.DefaultTTL)
}

func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*models.Cart, string, error) {
	cartKey, err := cartKeyFromSession(h.store, w, r)
	if err != nil {
		return nil, "", err
	}

	cart, err := h.carts.Get(r.Context(), cartKey)
	if err != nil {
		return nil, cartKey, err
	}

	if cart.IsExpired() {
		h.carts.Delete(r.Context(), cartKey)
		return nil, cartKey, models.ErrCartNotFound
	}

	return cart, cartKey, nil
}

func (h *CartHandler) findTicketType(r *http.Request, eventID, ticketTypeID int) (*models.TicketType, error) {
	ticketTypes, err := h.backend.GetTicketTypes(r.Context(), eventID)
	if err != nil {
		return nil, err
	}

	for _, tt := range ticketTypes {
		if tt.ID == ticketTypeID {
			return tt, nil
		}
	}

	return nil, models.ErrTicketTypeNotFound
}

func (h *CartHandler) setLine(cart *models.Cart, ticketType *models.TicketType, quantity int) {
	if line := cart.FindLine(ticketType.ID); line != nil {
		line.Quantity = quantity
		line.Remaining = ticketType.Remaining
		return
	}

	cart.Lines = append(cart.Lines, models.CartLine{
		TicketTypeID:  ticketType.ID,
		TicketName:    ticketType.Name,
		UnitPriceBase: ticketType.Price,
		Quantity:      quantity,
		Remaining:     ticketType.Remaining,
	})
}

func (h *CartHandler) removeLine(cart *models.Cart, ticketTypeID int) {
	for i := range cart.Lines {
		if cart.Lines[i].TicketTypeID == ticketTypeID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return
		}
	}
}

func (h *CartHandler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, models.ErrTicketTypeNotFound):
		writeError(w, http.StatusNotFound, "Ticket type not found")
	default:
		h.logger.Error("backend lookup failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Ticketing service unavailable")
	}
}

// buildCartView derives display amounts for a cart. Both the selection
// screen and the checkout screen go through this, so the numbers the user
// confirms are the numbers the user selected.
func buildCartView(cart *models.Cart) *CartView {
	view := &CartView{
		EventID:    cart.EventID,
		EventTitle: cart.EventTitle,
		Lines:      make([]CartLineView, 0, len(cart.Lines)),
		Total:      pricing.FormatAmount(pricing.CartTotal(cart)),
		ExpiresAt:  cart.ExpiresAt,
	}

	if cart.Promotion != nil {
		view.PromotionCode = cart.Promotion.Code
	}

	for _, line := range cart.Lines {
		unitPrice := pricing.DiscountedUnitPrice(line.UnitPriceBase, cart.Promotion)
		view.Lines = append(view.Lines, CartLineView{
			TicketTypeID:  line.TicketTypeID,
			TicketName:    line.TicketName,
			Quantity:      line.Quantity,
			UnitPriceBase: pricing.FormatAmount(line.UnitPriceBase),
			UnitPrice:     pricing.FormatAmount(unitPrice),
			Subtotal:      pricing.FormatAmount(pricing.LineSubtotal(line, cart.Promotion)),
		})
	}

	return view
}
