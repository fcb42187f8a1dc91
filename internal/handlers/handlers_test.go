package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
)

// mockBackend is a hand-rolled TicketingBackendInterface for handler tests
type mockBackend struct {
	getEventFn          func(ctx context.Context, eventID int) (*models.Event, error)
	getTicketTypesFn    func(ctx context.Context, eventID int) ([]*models.TicketType, error)
	issueTicketFn       func(ctx context.Context, req *services.IssueTicketRequest) (*models.Ticket, error)
	validatePromotionFn func(ctx context.Context, code string, eventID int) (*models.Promotion, error)
}

func (m *mockBackend) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return m.getEventFn(ctx, eventID)
}

func (m *mockBackend) GetTicketTypes(ctx context.Context, eventID int) ([]*models.TicketType, error) {
	return m.getTicketTypesFn(ctx, eventID)
}

func (m *mockBackend) IssueTicket(ctx context.Context, req *services.IssueTicketRequest) (*models.Ticket, error) {
	return m.issueTicketFn(ctx, req)
}

func (m *mockBackend) ValidatePromotion(ctx context.Context, code string, eventID int) (*models.Promotion, error) {
	return m.validatePromotionFn(ctx, code, eventID)
}

// testUser attaches an authenticated user to the request context, the way
// AuthMiddleware.LoadUser would.
func testUser(r *http.Request) *http.Request {
	user := &middleware.User{ID: "user-1", Email: "buyer@example.com", Name: "Test Buyer"}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	return r.WithContext(ctx)
}

// sessionCookie builds a session cookie carrying the given cart key so test
// requests resolve to a known cart in the store.
func sessionCookie(t *testing.T, store sessions.Store, cartKey string) *http.Cookie {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	session, err := store.Get(r, sessionName)
	require.NoError(t, err)
	session.Values[cartKeySession] = cartKey
	require.NoError(t, session.Save(r, w))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func newTestSessionStore() sessions.Store {
	return sessions.NewCookieStore([]byte("test-session-secret"))
}
