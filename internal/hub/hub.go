package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shevetna/server/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom returns the room registered under Code, creating it first if
// needed. Rooms only ever come into being through a join.
type EnsureRoom struct {
	Code  string
	Reply chan *lobby.Lobby
}

type GetRoom struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveRoom struct {
	Code string
}

// Stats reports aggregate counts for the health endpoint.
type Stats struct {
	Reply chan Counts
}

type Counts struct {
	ActiveRooms int
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (Stats) isHubMsg()       {}
func (ShutdownHub) isHubMsg() {}

type Config struct {
	// SweepInterval is how often idle rooms are checked for. Zero means the
	// 30 minute default.
	SweepInterval time.Duration
	// MaxIdle is how long a room may sit without activity before the sweep
	// closes it. Zero means the 30 minute default.
	MaxIdle time.Duration
}

const defaultSweep = 30 * time.Minute

// Hub is the process-wide room registry: one goroutine owning the code→room
// map, so inserts and removals never interleave with each other or with the
// sweep. Nothing here survives a restart.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*lobby.Lobby
	cfg    Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, cfg Config) *Hub {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweep
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = defaultSweep
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*lobby.Lobby),
		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	sweep := time.NewTicker(h.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case now := <-sweep.C:
			// Fire-and-forget: each room decides for itself and unregisters
			// through the inbox, so the sweep never blocks on a busy room.
			for _, lb := range h.rooms {
				go lb.Deliver(lobby.CheckIdle{Now: now, MaxIdle: h.cfg.MaxIdle})
			}

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				lb := h.rooms[msg.Code]
				if lb == nil {
					lb = lobby.NewLobby(h.ctx, msg.Code, h.unregisterFunc(msg.Code), h.log)
					h.rooms[msg.Code] = lb
					h.log.Info("created room", zap.String("room", msg.Code))
				}
				msg.Reply <- lb

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					h.log.Info("removed room", zap.String("room", msg.Code))
				}

			case Stats:
				msg.Reply <- Counts{ActiveRooms: len(h.rooms)}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// unregisterFunc hands a room the means to remove itself once its roster
// empties or it times out. The send gives up on hub shutdown rather than
// blocking a dying lobby goroutine.
func (h *Hub) unregisterFunc(code string) func() {
	return func() {
		select {
		case h.inbox <- RemoveRoom{Code: code}:
		case <-h.ctx.Done():
		}
	}
}

func (h *Hub) shutdown() {
	for code, lb := range h.rooms {
		lb.Deliver(lobby.Shutdown{})
		delete(h.rooms, code)
	}
	h.cancel()
}
