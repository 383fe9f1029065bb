package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	elerrs "github.com/eventlink/eventlink/internal/errors"
	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/serverutil"
)

const sessionCookieName = "eventlink_session"

// Describes an operator's sessionState that's persisted to their cookie.
type sessionState struct {
	UserID string
	Role   eventlink.Role
}

// Fetches the current session tied to the request.
func session(r *http.Request, secureCookie *securecookie.SecureCookie) sessionState {
	cookie, err := r.Cookie(sessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return sessionState{}
	}
	if err != nil {
		slog.Error("error fetching cookie", "err", err)
		return sessionState{}
	}

	value := sessionState{}
	if err := secureCookie.Decode(sessionCookieName, cookie.Value, &value); err != nil {
		slog.Error("error decoding cookie", "err", err)
		return sessionState{}
	}

	return value
}

// Sets the session on the request.
func setSession(w http.ResponseWriter, secureCookie *securecookie.SecureCookie, https bool, sess sessionState) {
	encoded, err := secureCookie.Encode(sessionCookieName, sess)
	if err != nil {
		slog.Error("error encoding cookie", "err", err)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   https,
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)
}

func requireSessionMiddleware(sc *securecookie.SecureCookie) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session(r, sc)
			if state.UserID == "" {
				http.Error(w, "Unauthenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requireAdminMiddleware(sc *securecookie.SecureCookie) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session(r, sc)
			if state.Role != eventlink.RoleAdmin {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) error {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return elerrs.E(err, http.StatusBadRequest)
	}

	usr, err := s.repo.UserByUsername(r.Context(), body.Username)
	if errors.Is(err, eventlink.ErrNotFound) {
		return elerrs.E("invalid credentials", http.StatusUnauthorized)
	}
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(body.Password)); err != nil {
		return elerrs.E("invalid credentials", http.StatusUnauthorized)
	}

	setSession(w, s.secureCookie, s.httpsCookies, sessionState{
		UserID: usr.ID,
		Role:   usr.Role,
	})

	return serverutil.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":       usr.ID,
			"username": usr.Username,
			"email":    usr.Email,
			"role":     usr.Role,
		},
	})
}

func (s *Server) getLogout(w http.ResponseWriter, r *http.Request) error {
	setSession(w, s.secureCookie, s.httpsCookies, sessionState{})

	return serverutil.WriteJSON(w, http.StatusOK, struct{}{})
}
