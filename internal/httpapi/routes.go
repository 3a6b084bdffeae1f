package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shevetna/server/internal/hub"
	"github.com/shevetna/server/internal/ws"
)

// SetupRoutes builds the router with the hub injected. When staticDir is set
// the game client is served from it; the game itself only needs /ws.
func SetupRoutes(h *hub.Hub, log *zap.Logger, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", Health(h))
	r.Get("/ws", ws.Handler(h, log))
	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}
	return r
}
