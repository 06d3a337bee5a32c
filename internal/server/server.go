package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/handler"
	"github.com/dukerupert/movienight/internal/middleware"
	"github.com/dukerupert/movienight/internal/moviesearch"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

// Login and register attempts allowed per client and route each minute.
const authAttemptsPerMinute = 10

type Server struct {
	sessions    *auth.Manager
	hub         *ws.Hub
	lookup      moviesearch.Lookup
	authH       *handler.AuthHandler
	movieNightH *handler.MovieNightHandler
	profileH    *handler.ProfileHandler
	friendH     *handler.FriendHandler
	calendarH   *handler.CalendarHandler
	prefs       *handler.Preferences
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the views. A nil lookup disables the movie search socket.
func New(client *api.Client, lookup moviesearch.Lookup, sessions *auth.Manager, prefs *handler.Preferences, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	return &Server{
		sessions:    sessions,
		hub:         hub,
		lookup:      lookup,
		authH:       handler.NewAuthHandler(client, sessions, hub, logger.With("component", "auth")),
		movieNightH: handler.NewMovieNightHandler(client, prefs, sessions, hub, logger.With("component", "movie_night")),
		profileH:    handler.NewProfileHandler(client, sessions, hub, logger.With("component", "profile")),
		friendH:     handler.NewFriendHandler(client, sessions, hub, logger.With("component", "friends")),
		calendarH:   handler.NewCalendarHandler(client, prefs, sessions, hub, logger.With("component", "calendar")),
		prefs:       prefs,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub returns the live refresh hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /session", s.authH.Session)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else needs a live session
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireSession(s.sessions)(protectedMux))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return middleware.RequestID(logged)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	_, signedIn := s.sessions.Current()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"signed_in": signedIn,
		"tabs":      s.hub.ClientCount(),
		"users":     s.hub.UserCount(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, authAttemptsPerMinute, time.Minute)(h).ServeHTTP
}

func (s *Server) movieSearchUnavailable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(map[string]string{"error": "movie search is not configured"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Own movie nights
	mux.HandleFunc("GET /api/calendar", s.movieNightH.Calendar)
	mux.HandleFunc("GET /api/movie-nights/past", s.movieNightH.Past)
	mux.HandleFunc("GET /api/movie-nights/new", s.movieNightH.New)
	mux.HandleFunc("GET /api/movie-nights/{id}", s.movieNightH.Get)
	mux.HandleFunc("POST /api/movie-nights", s.movieNightH.Create)
	mux.HandleFunc("PUT /api/movie-nights/{id}", s.movieNightH.Update)
	mux.HandleFunc("DELETE /api/movie-nights/{id}", s.movieNightH.Delete)
	mux.HandleFunc("GET /calendar.ics", s.movieNightH.Export)

	// Profile
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("POST /api/profile/password", s.profileH.ChangePassword)
	mux.HandleFunc("DELETE /api/profile", s.profileH.Delete)

	// Friends
	mux.HandleFunc("GET /api/friends", s.friendH.List)
	mux.HandleFunc("GET /api/friends/requests", s.friendH.Pending)
	mux.HandleFunc("GET /api/friends/search", s.friendH.Search)
	mux.HandleFunc("GET /api/friends/stats", s.friendH.Stats)
	mux.HandleFunc("POST /api/friends/request/{id}", s.friendH.SendRequest())
	mux.HandleFunc("DELETE /api/friends/request/{id}", s.friendH.Cancel())
	mux.HandleFunc("POST /api/friends/accept/{id}", s.friendH.Accept())
	mux.HandleFunc("POST /api/friends/reject/{id}", s.friendH.Reject())
	mux.HandleFunc("DELETE /api/friends/{id}", s.friendH.Remove())
	mux.HandleFunc("GET /api/users/{id}/friends", s.friendH.UserFriends)

	// Follows
	mux.HandleFunc("GET /api/follows/stats", s.friendH.FollowStats)
	mux.HandleFunc("GET /api/follows/search", s.friendH.FollowSearch)
	mux.HandleFunc("GET /api/follows/followers", s.friendH.Followers)
	mux.HandleFunc("GET /api/follows/following", s.friendH.Following)
	mux.HandleFunc("POST /api/follows/{id}", s.friendH.Follow())
	mux.HandleFunc("DELETE /api/follows/{id}", s.friendH.Unfollow())

	// Other users' calendars
	mux.HandleFunc("GET /api/users/{id}/calendar", s.calendarH.UserCalendar)
	mux.HandleFunc("GET /api/events/{id}", s.calendarH.MovieNight)
	mux.HandleFunc("POST /api/events/{id}/attend", s.calendarH.Attend)
	mux.HandleFunc("DELETE /api/events/{id}/attend", s.calendarH.Unattend)

	// Preferences
	mux.HandleFunc("GET /api/preferences", s.prefs.Get)
	mux.HandleFunc("PUT /api/preferences", s.prefs.Update)

	// Sockets
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
	if s.lookup != nil {
		mux.HandleFunc("GET /ws/movie-search", ws.HandleMovieSearch(s.lookup, nil, s.logger.With("component", "movie_search")))
	} else {
		mux.HandleFunc("GET /ws/movie-search", s.movieSearchUnavailable)
	}
}
