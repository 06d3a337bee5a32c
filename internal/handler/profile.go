package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/model"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

const deleteAccountPrompt = "Are you sure you want to delete your account? This action cannot be undone."

type ProfileHandler struct {
	base
	profile *api.ProfileService
}

func NewProfileHandler(client *api.Client, sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{base: newBase(sessions, hub, logger), profile: client.Profile}
}

type profileView struct {
	model.Profile
	DisplayName string `json:"displayName"`
	Initials    string `json:"initials"`
	MemberSince string `json:"memberSince"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profile.Get(r.Context())
	if err != nil {
		h.fail(w, r, err, "Profile not found")
		return
	}

	v := profileView{
		Profile:     *p,
		DisplayName: p.DisplayName(),
		Initials:    p.Initials(),
	}
	if !p.CreatedAt.IsZero() {
		v.MemberSince = humanize.RelTime(p.CreatedAt, h.now(), "ago", "from now")
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdate
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
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Please fix the highlighted fields", "fields": fields})
		return
	}

	u, err := h.profile.Update(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Profile not found")
		return
	}
	if err := h.sessions.UpdateUser(*u); err != nil {
		h.logger.Error("refresh session user", "error", err)
	}

	h.notifyUser(u.ID, ws.EntityProfile, "updated", u.ID)
	writeJSON(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword checks the new password locally before calling the API.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.CurrentPassword == "" {
		fields["currentPassword"] = "Current password is required"
	}
	switch {
	case len(req.NewPassword) < minPasswordLength:
		fields["newPassword"] = "Password must be at least 6 characters"
	case req.NewPassword != req.ConfirmPassword:
		fields["confirmPassword"] = "Passwords do not match"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Please fix the highlighted fields", "fields": fields})
		return
	}

	err := h.profile.ChangePassword(r.Context(), api.ChangePasswordRequest{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		// A wrong current password comes back as 400, not as an expired session.
		if rejected(err) && !isUnauthorized(err) {
			msg := api.Message(err)
			if msg == "" {
				msg = "Current password is incorrect"
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  msg,
				"fields": map[string]string{"currentPassword": msg},
			})
			return
		}
		h.fail(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

// Delete handles DELETE /api/profile?confirm=true and signs out on success.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeJSON(w, http.StatusPreconditionRequired, map[string]string{
			"error":  "confirmation required",
			"prompt": deleteAccountPrompt,
		})
		return
	}

	if err := h.profile.Delete(r.Context()); err != nil {
		h.fail(w, r, err, "")
		return
	}
	if err := h.sessions.Logout(); err != nil {
		h.logger.Error("clear session after account delete", "error", err)
	}

	h.notifyUser(auth.UserID(r.Context()), ws.EntitySession, "logout", 0)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}
