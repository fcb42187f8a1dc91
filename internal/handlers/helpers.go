package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName    = "session"
	cartKeySession = "cart_key"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// cartKeyFromSession returns the session's cart key, creating one if the
// session does not carry one yet. The key is the only cart state the
// session holds; the cart itself lives in the cart store.
func cartKeyFromSession(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return "", err
	}

	if key, ok := session.Values[cartKeySession].(string); ok && key != "" {
		return key, nil
	}

	key := uuid.New().String()
	session.Values[cartKeySession] = key
	if err := session.Save(r, w); err != nil {
		return "", err
	}

	return key, nil
}

// clearCartKey removes the cart key from the session
func clearCartKey(store sessions.Store, w http.ResponseWriter, r *http.Request) {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return
	}
	delete(session.Values, cartKeySession)
	session.Save(r, w)
}
