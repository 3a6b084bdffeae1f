package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shevetna/server/internal/hub"
	"github.com/shevetna/server/internal/lobby"
	"github.com/shevetna/server/internal/types"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
	pingInterval = 30 * time.Second
)

var connections atomic.Int64

// ActiveConnections is the live socket count, reported by the health endpoint.
func ActiveConnections() int64 { return connections.Load() }

// Handler upgrades the connection and runs its session: a reader loop
// decoding client envelopes and a writer goroutine draining the room's
// outbox. A connection belongs to at most one room at a time; the first
// join_room binds it, and the socket closing is what leaves the room.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connections.Add(1)
		defer connections.Add(-1)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The room owns this channel once a join succeeds and closes it to
		// force the connection down (idle teardown, slow client, room gone).
		outbox := make(chan types.ServerMessage, outboxSize)

		go func() {
			for m := range outbox {
				payload, err := json.Marshal(m)
				if err != nil {
					continue
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				_ = conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
			}
			conn.Close(websocket.StatusNormalClosure, "room closed")
			cancel()
		}()

		// Keep-alive probe. A missed pong is not a disconnect trigger on its
		// own; teardown happens when the read loop errors out.
		go func() {
			t := time.NewTicker(pingInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
					_ = conn.Ping(pctx)
					pcancel()
				}
			}
		}()

		var playerID string
		var current *lobby.Lobby

		defer func() {
			if current != nil {
				current.Deliver(lobby.Leave{PlayerID: playerID})
			} else {
				close(outbox)
			}
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(ctx, conn, "failed to process message")
				continue
			}

			switch {
			case cm.Type == types.TypeJoinRoom:
				if current != nil {
					writeError(ctx, conn, "already in a room")
					continue
				}
				lb, code, err := ensureRoom(h, cm.RoomID)
				if err != nil {
					writeError(ctx, conn, "failed to create room")
					continue
				}

				id := uuid.NewString()
				joinReply := make(chan error, 1)
				lb.Deliver(lobby.Join{
					PlayerID: id,
					Name:     cm.PlayerName,
					Outbox:   outbox,
					Reply:    joinReply,
				})
				select {
				case err := <-joinReply:
					if err != nil {
						writeError(ctx, conn, err.Error())
						continue
					}
				case <-lb.Done():
					writeError(ctx, conn, "room closed")
					continue
				}
				playerID, current = id, lb
				log.Info("connection joined room",
					zap.String("room", code),
					zap.String("player", id))

			case current == nil:
				switch cm.Type {
				case types.TypePlayWord, types.TypeExchangeTiles, types.TypePassTurn:
					writeError(ctx, conn, "not connected to a game")
				default:
					writeError(ctx, conn, "unrecognized message type")
				}

			default:
				// The room actor does its own dispatch, including the
				// unrecognized-type error for anything it does not know.
				current.Deliver(lobby.FromClient{PlayerID: playerID, Msg: cm})
			}
		}
	}
}

// ensureRoom resolves the room for a join: normalize the requested code, or
// mint one when the client asked for a fresh room.
func ensureRoom(h *hub.Hub, requested string) (*lobby.Lobby, string, error) {
	code := strings.ToUpper(strings.TrimSpace(requested))
	if code == "" {
		var err error
		code, err = GenerateRoomCode()
		if err != nil {
			return nil, "", err
		}
	}

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.EnsureRoom{Code: code, Reply: reply}
	return <-reply, code, nil
}

func writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, err := json.Marshal(types.Error(message))
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
