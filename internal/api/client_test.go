package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dukerupert/movienight/internal/logging"
	"github.com/dukerupert/movienight/internal/model"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func TestAuthenticatedCallSendsBearer(t *testing.T) {
	var gotAuth, gotPath, gotReqID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[{"id":1,"movieTitle":"Alien","scheduledDate":"2026-10-20T00:00:00","startTime":"19:00:00","notes":null,"imageUrl":null,"genre":"Horror"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	ctx := logging.WithRequestID(context.Background(), "req-1")
	nights, err := c.MovieNights.Upcoming(ctx)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/api/MovieNights/upcoming" {
		t.Errorf("path = %q", gotPath)
	}
	if gotReqID != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", gotReqID)
	}
	if len(nights) != 1 || nights[0].ScheduledDate.String() != "2026-10-20" {
		t.Errorf("nights = %+v", nights)
	}
	if nights[0].Notes != nil || model.Deref(nights[0].Genre) != "Horror" {
		t.Errorf("optional fields = %+v", nights[0])
	}
}

func TestGeneratedRequestID(t *testing.T) {
	var gotReqID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	if err := c.MovieNights.Delete(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if len(gotReqID) != 36 {
		t.Errorf("X-Request-ID = %q, want a uuid", gotReqID)
	}
}

func TestNoSessionFailsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken(""))
	_, err := c.Profile.Get(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{http.StatusUnauthorized, ``, ErrUnauthorized, ""},
		{http.StatusForbidden, `{"message":"You must be friends to view this calendar"}`, ErrForbidden, "You must be friends to view this calendar"},
		{http.StatusNotFound, `"User not found"`, ErrNotFound, "User not found"},
		{http.StatusInternalServerError, `boom`, nil, "boom"},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, tt.body)
		}))

		c := NewClient(server.URL, staticToken("tok"))
		_, err := c.Calendars.User(context.Background(), 9)
		server.Close()

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: err = %v, want *Error", tt.status, err)
		}
		if apiErr.Status != tt.status || apiErr.Path != "/PublicCalendar/9" {
			t.Errorf("error = %+v", apiErr)
		}
		for _, kind := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound} {
			if got := errors.Is(err, kind); got != (kind == tt.want) {
				t.Errorf("status %d: errors.Is(%v) = %v", tt.status, kind, got)
			}
		}
		if Message(err) != tt.msg {
			t.Errorf("status %d: message = %q, want %q", tt.status, Message(err), tt.msg)
		}
	}
}

func TestTransportFailureMatchesNoKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, staticToken("tok"))
	_, err := c.Friends.List(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		t.Errorf("transport error matched a kind: %v", err)
	}
}

func TestCreateSendsExplicitNulls(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/MovieNights" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"id":5,"movieTitle":"Alien","scheduledDate":"2026-10-20","startTime":"19:00:00"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	n, err := c.MovieNights.Create(context.Background(), model.MovieNightInput{MovieTitle: "Alien", ScheduledDate: "2026-10-20", StartTime: "19:00:00"})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != 5 {
		t.Errorf("id = %d", n.ID)
	}
	for _, k := range []string{"notes", "imageUrl", "genre"} {
		v, ok := body[k]
		if !ok || v != nil {
			t.Errorf("%s = %v (present %v), want explicit null", k, v, ok)
		}
	}
}

func TestLoginIsPublic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login should not send a token")
		}
		if r.URL.Path != "/api/Auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"token":"jwt","id":1,"email":"a@b.c","firstName":"Ann","lastName":"Lee"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	resp, err := c.Auth.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "jwt" || resp.FirstName != "Ann" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestFriendActionsPaths(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	ctx := context.Background()
	c.Friends.SendRequest(ctx, 2)
	c.Friends.Accept(ctx, 10)
	c.Friends.Reject(ctx, 11)
	c.Friends.Cancel(ctx, 2)
	c.Friends.Remove(ctx, 3)
	c.Follows.Follow(ctx, 4)
	c.Follows.Unfollow(ctx, 4)
	c.Calendars.Attend(ctx, 7)
	c.Calendars.Unattend(ctx, 7)

	want := []string{
		"POST /api/Friends/request/2",
		"POST /api/Friends/accept/10",
		"POST /api/Friends/reject/11",
		"DELETE /api/Friends/request/2",
		"DELETE /api/Friends/3",
		"POST /api/Follow/4",
		"DELETE /api/Follow/4",
		"POST /api/PublicCalendar/event/7/attend",
		"DELETE /api/PublicCalendar/event/7/attend",
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMovieNightDetailAttendeesAlwaysPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"movieTitle":"Heat","scheduledDate":"2026-11-01","startTime":"21:00:00","isOwner":false}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	d, err := c.Calendars.MovieNight(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if d.Attendees == nil {
		t.Error("attendees = nil, want empty list")
	}
}

func TestSearchQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("query"); q != "ann lee" {
			t.Errorf("query = %q", q)
		}
		w.Write([]byte(`[{"id":2,"email":"ann@x.y","firstName":"Ann","lastName":"Lee","friendshipStatus":"pending_received","isFollowing":true}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticToken("tok"))
	users, err := c.Friends.Search(context.Background(), "ann lee")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].FriendshipStatus != model.FriendshipPendingReceived || !users[0].IsFollowing {
		t.Errorf("users = %+v", users)
	}
}
