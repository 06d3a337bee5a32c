package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/debounce"
	"github.com/dukerupert/movienight/internal/moviesearch"
)

// HandleWebSocket upgrades connections and runs them as Hub clients.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // the listener is local; the browser origin varies with the dev server
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, auth.UserID(r.Context()))
		client.Run(r.Context())
	}
}

// HandleMovieSearch upgrades connections and runs an autocomplete session on
// each. A nil scheduler uses real timers.
func HandleMovieSearch(lookup moviesearch.Lookup, sched debounce.Scheduler, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn("movie search accept", "error", err)
			return
		}
		defer conn.CloseNow()

		NewSearchSession(conn, lookup, sched, logger).Run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}
