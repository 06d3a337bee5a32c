package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/model"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

const minPasswordLength = 6

type AuthHandler struct {
	base
	client *api.Client
}

func NewAuthHandler(client *api.Client, sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(sessions, hub, logger), client: client}
}

type sessionView struct {
	SignedIn bool        `json:"signedIn"`
	User     *model.User `json:"user,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "Email is required"
	}
	if req.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Please fix the highlighted fields", "fields": fields})
		return
	}

	resp, err := h.client.Auth.Login(r.Context(), req)
	if err != nil {
		if rejected(err) {
			msg := api.Message(err)
			if msg == "" {
				msg = "Invalid email or password"
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
			return
		}
		h.fail(w, r, err, "")
		return
	}
	h.signIn(w, r, *resp)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "Please enter a valid email"
	}
	if req.FirstName == "" {
		fields["firstName"] = "First name is required"
	}
	if req.LastName == "" {
		fields["lastName"] = "Last name is required"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Please fix the highlighted fields", "fields": fields})
		return
	}

	resp, err := h.client.Auth.Register(r.Context(), req)
	if err != nil {
		if rejected(err) {
			msg := api.Message(err)
			if msg == "" {
				msg = "Registration failed"
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": msg})
			return
		}
		h.fail(w, r, err, "")
		return
	}
	h.signIn(w, r, *resp)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, resp model.AuthResponse) {
	sess, err := h.sessions.Login(resp)
	if err != nil {
		h.logger.Error("store session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start session"})
		return
	}
	h.notifyUser(sess.User.ID, ws.EntitySession, "login", sess.User.ID)
	writeJSON(w, http.StatusOK, sessionView{SignedIn: true, User: &sess.User, Redirect: "/"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.sessions.Logout(); err != nil {
		h.logger.Error("logout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to sign out"})
		return
	}
	h.notifyUser(userID, ws.EntitySession, "logout", 0)
	writeJSON(w, http.StatusOK, sessionView{Redirect: "/login"})
}

// Session handles GET /session so the browser can decide which screen to show.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionView{})
		return
	}
	writeJSON(w, http.StatusOK, sessionView{SignedIn: true, User: &sess.User})
}

// rejected reports whether the API refused the request itself (a 4xx), as
// opposed to failing to answer it.
func rejected(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
