package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/model"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

const (
	userNotFoundMsg    = "User not found"
	requestNotFoundMsg = "Friend request not found"
	minSearchLength    = 2
)

// FriendHandler serves friends and follows.
type FriendHandler struct {
	base
	friends *api.FriendService
	follows *api.FollowService
}

func NewFriendHandler(client *api.Client, sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{
		base:    newBase(sessions, hub, logger),
		friends: client.Friends,
		follows: client.Follows,
	}
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.friends.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type pendingView struct {
	model.FriendRequest
	When string `json:"when"`
}

func (h *FriendHandler) Pending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.friends.Pending(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	now := h.now()
	out := make([]pendingView, 0, len(reqs))
	for _, fr := range reqs {
		v := pendingView{FriendRequest: fr}
		if !fr.CreatedAt.IsZero() {
			v.When = humanize.RelTime(fr.CreatedAt, now, "ago", "from now")
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *FriendHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.friends.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// searchTerm returns ?q= when it is long enough to send.
func searchTerm(r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	return q, len([]rune(q)) >= minSearchLength
}

// Search handles GET /api/friends/search?q=. Short queries answer an empty
// list without calling the API.
func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, ok := searchTerm(r)
	if !ok {
		writeJSON(w, http.StatusOK, []model.UserSummary{})
		return
	}
	users, err := h.friends.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UserFriends handles GET /api/users/{id}/friends.
func (h *FriendHandler) UserFriends(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	uf, err := h.friends.UserFriends(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, userNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, uf)
}

// action runs a friend or follow mutation on the {id} path value and
// announces it.
func (h *FriendHandler) action(entity, name, notFound string, fn func(*http.Request, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := fn(r, id); err != nil {
			h.fail(w, r, err, notFound)
			return
		}
		h.notify(entity, name, id)
		writeJSON(w, http.StatusOK, map[string]string{"status": name})
	}
}

func (h *FriendHandler) SendRequest() http.HandlerFunc {
	return h.action(ws.EntityFriend, "requested", userNotFoundMsg, func(r *http.Request, id int64) error {
		return h.friends.SendRequest(r.Context(), id)
	})
}

func (h *FriendHandler) Accept() http.HandlerFunc {
	return h.action(ws.EntityFriend, "accepted", requestNotFoundMsg, func(r *http.Request, id int64) error {
		return h.friends.Accept(r.Context(), id)
	})
}

func (h *FriendHandler) Reject() http.HandlerFunc {
	return h.action(ws.EntityFriend, "rejected", requestNotFoundMsg, func(r *http.Request, id int64) error {
		return h.friends.Reject(r.Context(), id)
	})
}

func (h *FriendHandler) Cancel() http.HandlerFunc {
	return h.action(ws.EntityFriend, "cancelled", requestNotFoundMsg, func(r *http.Request, id int64) error {
		return h.friends.Cancel(r.Context(), id)
	})
}

func (h *FriendHandler) Remove() http.HandlerFunc {
	return h.action(ws.EntityFriend, "removed", userNotFoundMsg, func(r *http.Request, id int64) error {
		return h.friends.Remove(r.Context(), id)
	})
}

func (h *FriendHandler) FollowStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.follows.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FriendHandler) FollowSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := searchTerm(r)
	if !ok {
		writeJSON(w, http.StatusOK, []model.UserSummary{})
		return
	}
	users, err := h.follows.Search(r.Context(), q)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *FriendHandler) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.follows.Followers(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *FriendHandler) Following(w http.ResponseWriter, r *http.Request) {
	users, err := h.follows.Following(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *FriendHandler) Follow() http.HandlerFunc {
	return h.action(ws.EntityFollow, "followed", userNotFoundMsg, func(r *http.Request, id int64) error {
		return h.follows.Follow(r.Context(), id)
	})
}

func (h *FriendHandler) Unfollow() http.HandlerFunc {
	return h.action(ws.EntityFollow, "unfollowed", userNotFoundMsg, func(r *http.Request, id int64) error {
		return h.follows.Unfollow(r.Context(), id)
	})
}
