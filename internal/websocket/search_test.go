package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dukerupert/movienight/internal/debounce"
	"github.com/dukerupert/movienight/internal/tmdb"
)

// immediateScheduler runs every action right away.
type immediateScheduler struct{}

type spentHandle struct{}

func (spentHandle) Stop() bool { return false }

func (immediateScheduler) Schedule(_ time.Duration, fn func()) debounce.Handle {
	go fn()
	return spentHandle{}
}

type stubLookup struct{}

func (stubLookup) Search(ctx context.Context, query string) ([]tmdb.Movie, error) {
	return []tmdb.Movie{{ID: 348, Title: "Alien", PosterPath: "/alien.jpg", ReleaseDate: "1979-05-25"}}, nil
}

func (stubLookup) Details(ctx context.Context, id int64) (*tmdb.Movie, error) {
	if id != 348 {
		return nil, errors.New("not found")
	}
	return &tmdb.Movie{ID: 348, Title: "Alien", PosterPath: "/alien.jpg", Overview: "In space...", ReleaseDate: "1979-05-25", Genres: []string{"Horror"}}, nil
}

func (stubLookup) PosterURL(path, size string) string {
	return "https://img.test/" + size + path
}

func dialSearch(t *testing.T) (*ws.Conn, context.Context) {
	t.Helper()
	server := httptest.NewServer(HandleMovieSearch(stubLookup{}, immediateScheduler{}, nil))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func readUntil(t *testing.T, ctx context.Context, conn *ws.Conn, match func(Reply) bool) Reply {
	t.Helper()
	for {
		var r Reply
		if err := wsjson.Read(ctx, conn, &r); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(r) {
			return r
		}
	}
}

func TestSearchSocketInputAndSelect(t *testing.T) {
	conn, ctx := dialSearch(t)

	if err := wsjson.Write(ctx, conn, Command{Type: CommandInput, Text: "Alien"}); err != nil {
		t.Fatal(err)
	}
	r := readUntil(t, ctx, conn, func(r Reply) bool {
		return r.Type == ReplyState && len(r.State.Results) > 0
	})
	if r.State.Results[0].ThumbnailURL != "https://img.test/w92/alien.jpg" {
		t.Errorf("thumbnail = %q", r.State.Results[0].ThumbnailURL)
	}

	if err := wsjson.Write(ctx, conn, Command{Type: CommandSelect, MovieID: 348}); err != nil {
		t.Fatal(err)
	}
	r = readUntil(t, ctx, conn, func(r Reply) bool {
		return r.Type == ReplyFields && r.Fields.ImageURL != ""
	})
	if r.Fields.MovieTitle != "Alien" || r.Fields.Genre != "Horror" || r.Fields.Notes != "In space..." {
		t.Errorf("fields = %+v", r.Fields)
	}
	if r.Fields.ImageURL != "https://img.test/w500/alien.jpg" {
		t.Errorf("poster = %q", r.Fields.ImageURL)
	}

	// Editing the title drops what the pick filled in.
	if err := wsjson.Write(ctx, conn, Command{Type: CommandInput, Text: "Alien 3"}); err != nil {
		t.Fatal(err)
	}
	r = readUntil(t, ctx, conn, func(r Reply) bool { return r.Type == ReplyFields })
	if r.Fields.MovieTitle != "Alien 3" || r.Fields.ImageURL != "" || r.Fields.Genre != "" || r.Fields.Notes != "" {
		t.Errorf("fields after edit = %+v", r.Fields)
	}
}

func TestSearchSocketSelectFailure(t *testing.T) {
	conn, ctx := dialSearch(t)

	if err := wsjson.Write(ctx, conn, Command{Type: CommandSelect, MovieID: 1}); err != nil {
		t.Fatal(err)
	}
	r := readUntil(t, ctx, conn, func(r Reply) bool { return r.Type == ReplyError })
	if r.Error == "" {
		t.Error("expected error message")
	}
}

func TestSearchSocketUnknownCommand(t *testing.T) {
	conn, ctx := dialSearch(t)

	if err := wsjson.Write(ctx, conn, Command{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	r := readUntil(t, ctx, conn, func(r Reply) bool { return r.Type == ReplyError })
	if !strings.Contains(r.Error, "dance") {
		t.Errorf("error = %q", r.Error)
	}
}
