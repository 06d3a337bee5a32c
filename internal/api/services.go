package api

import (
	"context"
	"net/http"

	"github.com/dukerupert/movienight/internal/model"
)

// AuthService covers the two unauthenticated calls.
type AuthService struct{ c *Client }

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := s.c.do(ctx, call{method: http.MethodPost, path: "/Auth/register", body: req, out: &out, public: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := s.c.do(ctx, call{method: http.MethodPost, path: "/Auth/login", body: req, out: &out, public: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

type MovieNightService struct{ c *Client }

func (s *MovieNightService) list(ctx context.Context, path string) ([]model.MovieNight, error) {
	out := []model.MovieNight{}
	if err := s.c.do(ctx, call{method: http.MethodGet, path: path, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.MovieNight{}
	}
	return out, nil
}

func (s *MovieNightService) List(ctx context.Context) ([]model.MovieNight, error) {
	return s.list(ctx, "/MovieNights")
}

func (s *MovieNightService) Upcoming(ctx context.Context) ([]model.MovieNight, error) {
	return s.list(ctx, "/MovieNights/upcoming")
}

func (s *MovieNightService) Past(ctx context.Context) ([]model.MovieNight, error) {
	return s.list(ctx, "/MovieNights/past")
}

func (s *MovieNightService) Get(ctx context.Context, id int64) (*model.MovieNight, error) {
	var out model.MovieNight
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/MovieNights", id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieNightService) Create(ctx context.Context, in model.MovieNightInput) (*model.MovieNight, error) {
	var out model.MovieNight
	if err := s.c.do(ctx, call{method: http.MethodPost, path: "/MovieNights", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieNightService) Update(ctx context.Context, id int64, in model.MovieNightInput) (*model.MovieNight, error) {
	var out model.MovieNight
	if err := s.c.do(ctx, call{method: http.MethodPut, path: idPath("/MovieNights", id), body: in, out: &out}); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		out.ID = id
	}
	return &out, nil
}

func (s *MovieNightService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/MovieNights", id)})
}

type ProfileService struct{ c *Client }

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *ProfileService) Get(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Profile", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProfileService) Update(ctx context.Context, u model.ProfileUpdate) (*model.User, error) {
	var out model.User
	if err := s.c.do(ctx, call{method: http.MethodPut, path: "/Profile", body: u, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: "/Profile/change-password", body: req})
}

func (s *ProfileService) Delete(ctx context.Context) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: "/Profile"})
}

type FriendService struct{ c *Client }

func (s *FriendService) Stats(ctx context.Context) (*model.FriendStats, error) {
	var out model.FriendStats
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Friends/stats", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FriendService) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	out := []model.UserSummary{}
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Friends/search", query: map[string]string{"query": query}, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FriendService) List(ctx context.Context) ([]model.UserSummary, error) {
	out := []model.UserSummary{}
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Friends", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FriendService) Pending(ctx context.Context) ([]model.FriendRequest, error) {
	out := []model.FriendRequest{}
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Friends/requests", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// UserFriends lists another user's friends, annotated from the viewer's side.
func (s *FriendService) UserFriends(ctx context.Context, userID int64) (*model.UserFriends, error) {
	var out model.UserFriends
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/Friends/user", userID), out: &out}); err != nil {
		return nil, err
	}
	if out.Friends == nil {
		out.Friends = []model.UserSummary{}
	}
	return &out, nil
}

func (s *FriendService) SendRequest(ctx context.Context, userID int64) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: idPath("/Friends/request", userID), body: struct{}{}})
}

func (s *FriendService) Accept(ctx context.Context, requestID int64) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: idPath("/Friends/accept", requestID), body: struct{}{}})
}

func (s *FriendService) Reject(ctx context.Context, requestID int64) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: idPath("/Friends/reject", requestID), body: struct{}{}})
}

// Cancel withdraws a request the viewer sent to userID.
func (s *FriendService) Cancel(ctx context.Context, userID int64) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/Friends/request", userID)})
}

func (s *FriendService) Remove(ctx context.Context, userID int64) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/Friends", userID)})
}

type FollowService struct{ c *Client }

func (s *FollowService) Stats(ctx context.Context) (*model.FollowStats, error) {
	var out model.FollowStats
	if err := s.c.do(ctx, call{method: http.MethodGet, path: "/Follow/stats", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FollowService) users(ctx context.Context, path string, query map[string]string) ([]model.UserSummary, error) {
	out := []model.UserSummary{}
	if err := s.c.do(ctx, call{method: http.MethodGet, path: path, query: query, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.UserSummary{}
	}
	return out, nil
}

func (s *FollowService) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	return s.users(ctx, "/Follow/search", map[string]string{"query": query})
}

func (s *FollowService) Followers(ctx context.Context) ([]model.UserSummary, error) {
	return s.users(ctx, "/Follow/followers", nil)
}

func (s *FollowService) Following(ctx context.Context) ([]model.UserSummary, error) {
	return s.users(ctx, "/Follow/following", nil)
}

func (s *FollowService) Follow(ctx context.Context, userID int64) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: idPath("/Follow", userID), body: struct{}{}})
}

func (s *FollowService) Unfollow(ctx context.Context, userID int64) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/Follow", userID)})
}

// CalendarService reads other users' calendars. Calendars of non-friends
// answer 403.
type CalendarService struct{ c *Client }

func (s *CalendarService) User(ctx context.Context, userID int64) (*model.PublicCalendar, error) {
	var out model.PublicCalendar
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/PublicCalendar", userID), out: &out}); err != nil {
		return nil, err
	}
	if out.MovieNights == nil {
		out.MovieNights = []model.MovieNight{}
	}
	return &out, nil
}

func (s *CalendarService) MovieNight(ctx context.Context, id int64) (*model.MovieNightDetail, error) {
	var out model.MovieNightDetail
	if err := s.c.do(ctx, call{method: http.MethodGet, path: idPath("/PublicCalendar/event", id), out: &out}); err != nil {
		return nil, err
	}
	if out.Attendees == nil {
		out.Attendees = []model.Attendee{}
	}
	return &out, nil
}

func (s *CalendarService) Attend(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: idPath("/PublicCalendar/event", id) + "/attend", body: struct{}{}})
}

func (s *CalendarService) Unattend(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{method: http.MethodDelete, path: idPath("/PublicCalendar/event", id) + "/attend"})
}
