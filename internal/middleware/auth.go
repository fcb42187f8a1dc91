package middleware

import (
	"context"
	"net/http"
	"strings"

	"ticket-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// User represents the authenticated buyer as asserted by the external
// session provider. This service never issues tokens; it only verifies them.
type User struct {
	ID    string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthMiddleware verifies session-provider tokens on incoming requests
type AuthMiddleware struct {
	signingSecret []byte
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(signingSecret string) *AuthMiddleware {
	return &AuthMiddleware{signingSecret: []byte(signingSecret)}
}

// LoadUser extracts and verifies the bearer token, if present, and adds the
// user to the request context. Requests without a valid token continue
// anonymously; RequireAuth decides whether that is acceptable.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.userFromRequest(r)
		if err != nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that did not present a valid token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the authenticated user from the context,
// or nil for anonymous requests.
func GetUserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(UserContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}

func (m *AuthMiddleware) userFromRequest(r *http.Request) (*User, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, nil
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrUnauthorized
		}
		return m.signingSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthorized
	}

	user := &User{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}

	if user.ID == "" {
		return nil, models.ErrUnauthorized
	}

	return user, nil
}
