package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ticket-storefront/internal/cartstore"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/monitoring"
	"ticket-storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmissionStatus represents the terminal state of a checkout attempt.
// There is no value for the in-flight state: Submit is synchronous, and a
// batch still settling surfaces as ErrSubmissionInProgress on a concurrent
// call rather than as a status.
type SubmissionStatus string

const (
	SubmissionAllSucceeded    SubmissionStatus = "all_succeeded"
	SubmissionPartiallyFailed SubmissionStatus = "partially_failed"
	SubmissionAborted         SubmissionStatus = "aborted"
)

// ErrSubmissionInProgress is returned when a cart already has a submission
// in flight. The cart is read-only until that batch settles; there is no
// cancel-in-flight operation.
var ErrSubmissionInProgress = errors.New("a submission for this cart is already in progress")

// TicketIssuer issues one ticket record per call.
type TicketIssuer interface {
	IssueTicket(ctx context.Context, req *IssueTicketRequest) (*models.Ticket, error)
}

// SubmissionResult represents the outcome of a checkout attempt.
type SubmissionResult struct {
	Status      SubmissionStatus  `json:"status"`
	TotalUnits  int               `json:"total_units"`
	Succeeded   int               `json:"succeeded"`
	Failed      int               `json:"failed"`
	Total       decimal.Decimal   `json:"total"`
	Tickets     []*models.Ticket  `json:"tickets,omitempty"`
	Failures    []IssuanceFailure `json:"failures,omitempty"`
	AbortReason string            `json:"abort_reason,omitempty"`
}

// IssuanceFailure describes one failed per-unit issuance call, identified
// by its correlation token rather than by response ordering.
type IssuanceFailure struct {
	RequestID    string `json:"request_id"`
	TicketTypeID int    `json:"ticket_type_id"`
	Error        string `json:"error"`
}

// CheckoutService converts a validated cart into per-unit ticket issuance
// requests, runs them concurrently, and classifies the aggregate outcome.
type CheckoutService struct {
	issuer TicketIssuer
	carts  cartstore.Store
	logger *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(issuer TicketIssuer, carts cartstore.Store, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		issuer:   issuer,
		carts:    carts,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// issuanceUnit is one enqueued single-ticket request with its correlation token
type issuanceUnit struct {
	requestID string
	request   *IssueTicketRequest
}

// unitOutcome is the settled result of one issuance call
type unitOutcome struct {
	unit   issuanceUnit
	ticket *models.Ticket
	err    error
}

// Submit runs a checkout attempt for the cart stored under cartKey.
//
// Pre-flight validation failures terminate in SubmissionAborted without a
// single network call. Otherwise every cart line with quantity q enqueues
// exactly q issuance requests carrying the reconciled discounted unit price,
// all requests are dispatched concurrently, and the batch runs to full
// settlement before the outcome is classified. Individual failures are not
// retried and do not cancel sibling requests. The cart is deleted from the
// store if and only if every unit succeeded.
func (s *CheckoutService) Submit(ctx context.Context, cartKey string, card *models.CardDetails) (*SubmissionResult, error) {
	monitoring.CheckoutAttemptsTotal.Inc()

	if !s.begin(cartKey) {
		return nil, ErrSubmissionInProgress
	}
	defer s.end(cartKey)

	cart, err := s.carts.Get(ctx, cartKey)
	if err != nil {
		if errors.Is(err, models.ErrCartNotFound) {
			return s.abort("your cart could not be found or has expired"), nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if reason := s.preflight(cart, card); reason != "" {
		return s.abort(reason), nil
	}

	units := s.enqueueUnits(cart)
	total := pricing.CartTotal(cart)

	s.logger.Info("submitting checkout batch",
		zap.String("cart_key", cartKey),
		zap.Int("event_id", cart.EventID),
		zap.Int("units", len(units)),
		zap.String("total", pricing.FormatAmount(total)))

	outcomes := s.dispatchAll(ctx, units)

	result := s.classify(outcomes, total)

	if result.Status == SubmissionAllSucceeded {
		monitoring.CheckoutSuccessTotal.Inc()
		// Clear-on-success only: a partially failed cart is retained so the
		// user can retry the remainder explicitly.
		if err := s.carts.Delete(ctx, cartKey); err != nil {
			s.logger.Warn("failed to clear cart after successful checkout",
				zap.String("cart_key", cartKey), zap.Error(err))
		}
	} else {
		monitoring.CheckoutPartialFailureTotal.Inc()
		s.logger.Warn("checkout partially failed",
			zap.String("cart_key", cartKey),
			zap.Int("succeeded", result.Succeeded),
			zap.Int("failed", result.Failed))
	}

	return result, nil
}

// preflight returns a user-facing message for the first failing check, or
// an empty string if the submission may proceed.
func (s *CheckoutService) preflight(cart *models.Cart, card *models.CardDetails) string {
	if card == nil {
		return "payment details are required"
	}

	if err := card.Validate(); err != nil {
		return err.Error()
	}

	if cart.IsExpired() {
		return "your cart has expired"
	}

	if cart.IsEmpty() {
		return "your cart is empty"
	}

	if cart.EventID <= 0 {
		return "no event is associated with this cart"
	}

	return ""
}

// enqueueUnits expands cart lines into one issuance request per unit. Each
// request carries the reconciled discounted unit price, not the base price.
func (s *CheckoutService) enqueueUnits(cart *models.Cart) []issuanceUnit {
	promoCode := ""
	if cart.Promotion != nil {
		promoCode = cart.Promotion.Code
	}

	var units []issuanceUnit
	for _, line := range cart.Lines {
		if line.Quantity <= 0 {
			continue
		}

		unitPrice := pricing.DiscountedUnitPrice(line.UnitPriceBase, cart.Promotion)
		for i := 0; i < line.Quantity; i++ {
			units = append(units, issuanceUnit{
				requestID: uuid.New().String(),
				request: &IssueTicketRequest{
					EventID:      cart.EventID,
					TicketTypeID: line.TicketTypeID,
					Price:        unitPrice,
					PromoCode:    promoCode,
				},
			})
		}
	}

	return units
}

// dispatchAll fires every issuance request concurrently and waits for the
// whole batch to settle. It never short-circuits: a failed unit must not
// cancel siblings already in flight, and the caller needs every outcome to
// report accurate counts.
func (s *CheckoutService) dispatchAll(ctx context.Context, units []issuanceUnit) []unitOutcome {
	results := make(chan unitOutcome, len(units))

	var wg sync.WaitGroup
	for _, unit := range units {
		wg.Add(1)
		go func(u issuanceUnit) {
			defer wg.Done()
			ticket, err := s.issuer.IssueTicket(ctx, u.request)
			results <- unitOutcome{unit: u, ticket: ticket, err: err}
		}(unit)
	}

	wg.Wait()
	close(results)

	outcomes := make([]unitOutcome, 0, len(units))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// classify counts settled outcomes and derives the terminal status.
func (s *CheckoutService) classify(outcomes []unitOutcome, total decimal.Decimal) *SubmissionResult {
	result := &SubmissionResult{
		TotalUnits: len(outcomes),
		Total:      total,
	}

	for _, outcome := range outcomes {
		if outcome.err != nil {
			monitoring.TicketIssuanceFailuresTotal.Inc()
			result.Failed++
			result.Failures = append(result.Failures, IssuanceFailure{
				RequestID:    outcome.unit.requestID,
				TicketTypeID: outcome.unit.request.TicketTypeID,
				Error:        outcome.err.Error(),
			})
			continue
		}

		monitoring.TicketsIssuedTotal.Inc()
		result.Succeeded++
		result.Tickets = append(result.Tickets, outcome.ticket)
	}

	if result.Failed > 0 {
		result.Status = SubmissionPartiallyFailed
	} else {
		result.Status = SubmissionAllSucceeded
	}

	return result
}

// abort builds the terminal result for a pre-flight failure
func (s *CheckoutService) abort(reason string) *SubmissionResult {
	monitoring.CheckoutAbortedTotal.WithLabelValues("preflight").Inc()
	return &SubmissionResult{
		Status:      SubmissionAborted,
		AbortReason: reason,
		Total:       decimal.Zero,
	}
}

// Message returns the user-facing summary for the submission. Failures are
// aggregated into a single count-accurate message rather than one message
// per failed unit.
func (r *SubmissionResult) Message() string {
	switch r.Status {
	case SubmissionAllSucceeded:
		return fmt.Sprintf("All %d tickets were created successfully", r.TotalUnits)
	case SubmissionPartiallyFailed:
		return fmt.Sprintf("%d of %d tickets were created; %d failed. Your cart has been kept so you can retry.",
			r.Succeeded, r.TotalUnits, r.Failed)
	case SubmissionAborted:
		return r.AbortReason
	default:
		return ""
	}
}

func (s *CheckoutService) begin(cartKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[cartKey]; busy {
		return false
	}
	s.inflight[cartKey] = struct{}{}
	return true
}

func (s *CheckoutService) end(cartKey string) {
	s.mu.Lock()
	delete(s.inflight, cartKey)
	s.mu.Unlock()
}
