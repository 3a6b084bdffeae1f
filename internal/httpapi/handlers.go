package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shevetna/server/internal/hub"
	"github.com/shevetna/server/internal/ws"
)

type healthPayload struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	ActiveGames      int    `json:"activeGames"`
	TotalConnections int64  `json:"totalConnections"`
}

// Health reports process liveness plus aggregate counts. It sits outside the
// game core: a registry ask for the room count, an atomic read for sockets.
func Health(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.Counts, 1)
		h.Inbox() <- hub.Stats{Reply: reply}
		counts := <-reply

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthPayload{
			Status:           "OK",
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
			ActiveGames:      counts.ActiveRooms,
			TotalConnections: ws.ActiveConnections(),
		})
	}
}
