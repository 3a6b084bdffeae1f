package lobby

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/shevetna/server/internal/game"
	"github.com/shevetna/server/internal/types"
)

// Lobby is the actor owning one game room. A single goroutine drains the
// inbox, so every room mutation runs to completion before the next message is
// handled; the game core needs no locks.
type Lobby struct {
	inbox      chan Msg
	room       *game.Room
	clients    map[string]chan types.ServerMessage
	unregister func() // removes this room from the registry
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewLobby(parent context.Context, roomID string, unregister func(), log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:      make(chan Msg, 64),
		room:       game.NewRoom(roomID),
		clients:    make(map[string]chan types.ServerMessage),
		unregister: unregister,
		log:        log.With(zap.String("room", roomID)),
		ctx:        ctx,
		cancel:     cancel,
	}

	go l.loop()
	return l
}

// Done is closed once the room has shut down and will no longer reply.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

// Deliver queues m for the room, giving up if the room has already shut down
// so a connection tearing down late never blocks forever.
func (l *Lobby) Deliver(m Msg) {
	select {
	case l.inbox <- m:
	case <-l.ctx.Done():
	}
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)

			case FromClient:
				l.dispatch(msg.PlayerID, msg.Msg)

			case Leave:
				if l.handleLeave(msg.PlayerID) {
					return
				}

			case CheckIdle:
				if l.room.PlayerCount() == 0 || msg.Now.Sub(l.room.LastActivity()) > msg.MaxIdle {
					l.log.Info("closing idle room")
					l.shutdown()
					return
				}

			case GetState:
				msg.Reply <- View{NumClients: len(l.clients), Snapshot: l.room.Snapshot()}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) {
	p, err := l.room.Join(msg.PlayerID, msg.Name)
	if err != nil {
		msg.Reply <- err
		return
	}
	l.clients[msg.PlayerID] = msg.Outbox
	msg.Reply <- nil

	snap := l.room.Snapshot()
	l.send(p.ID, types.ServerMessage{
		Type:          types.TypeRoomJoined,
		PlayerID:      p.ID,
		RoomID:        l.room.ID,
		MyTiles:       slices.Clone(p.Rack),
		Board:         &snap.Board,
		Players:       snap.Players,
		CurrentPlayer: snap.CurrentPlayer,
		TilesLeft:     types.IntPtr(snap.TilesLeft),
		GameStarted:   types.BoolPtr(snap.GameStarted),
	})
	l.broadcast(types.ServerMessage{
		Type:   types.TypePlayerJoined,
		Player: &game.PlayerInfo{ID: p.ID, Name: p.Name, Score: p.Score},
	}, p.ID)

	l.log.Info("player joined",
		zap.String("player", p.ID),
		zap.String("name", p.Name),
		zap.Int("players", l.room.PlayerCount()))
}

// handleLeave returns the player's tiles to the bag, tells the others, and
// reports true when the empty room unregistered itself and stopped.
func (l *Lobby) handleLeave(playerID string) bool {
	if ch, ok := l.clients[playerID]; ok {
		close(ch)
		delete(l.clients, playerID)
	}

	p, empty := l.room.Leave(playerID)
	if p != nil {
		l.broadcast(types.ServerMessage{
			Type:       types.TypePlayerLeft,
			PlayerID:   p.ID,
			PlayerName: p.Name,
		}, "")
		l.log.Info("player left", zap.String("player", p.ID), zap.String("name", p.Name))
	}

	if empty {
		l.shutdown()
		return true
	}
	return false
}

func (l *Lobby) dispatch(playerID string, cm types.ClientMessage) {
	switch cm.Type {
	case types.TypePlayWord:
		l.handlePlay(playerID, cm)
	case types.TypeExchangeTiles:
		l.handleExchange(playerID, cm)
	case types.TypePassTurn:
		l.handlePass(playerID)
	default:
		l.send(playerID, types.Error("unrecognized message type"))
	}
}

func (l *Lobby) handlePlay(playerID string, cm types.ClientMessage) {
	res, err := l.room.PlayWord(playerID, cm.Tiles, cm.Score)
	if err != nil {
		l.send(playerID, types.Error(err.Error()))
		return
	}
	for _, pl := range res.Missing {
		// Trust boundary, not validation: the move went through anyway.
		l.log.Warn("played tile not found in rack",
			zap.String("player", playerID),
			zap.String("letter", pl.Letter),
			zap.Bool("isJoker", pl.Joker))
	}

	snap := l.room.Snapshot()
	l.broadcast(types.ServerMessage{
		Type:       types.TypeWordPlayed,
		PlayerID:   playerID,
		PlayerName: l.room.PlayerName(playerID),
		Score:      types.IntPtr(res.Score),
		Board:      &snap.Board,
		Players:    snap.Players,
		TilesLeft:  types.IntPtr(snap.TilesLeft),
	}, "")
	l.send(playerID, types.ServerMessage{
		Type:    types.TypeNewTiles,
		MyTiles: res.Rack,
	})
	l.broadcast(types.ServerMessage{
		Type:          types.TypeTurnChanged,
		CurrentPlayer: l.room.CurrentPlayer(),
	}, "")
}

func (l *Lobby) handleExchange(playerID string, cm types.ClientMessage) {
	res, err := l.room.Exchange(playerID, cm.TileIndexes)
	if err != nil {
		l.send(playerID, types.Error(err.Error()))
		return
	}

	// The fresh rack goes to the mover alone; everyone else only learns that
	// the turn moved on and how many tiles are left.
	l.send(playerID, types.ServerMessage{
		Type:     types.TypeTilesExchanged,
		PlayerID: playerID,
		NewTiles: res.Rack,
	})
	l.broadcast(types.ServerMessage{
		Type:          types.TypeTurnChanged,
		CurrentPlayer: l.room.CurrentPlayer(),
		TilesLeft:     types.IntPtr(l.room.TilesLeft()),
	}, "")
}

func (l *Lobby) handlePass(playerID string) {
	res, err := l.room.Pass(playerID)
	if err != nil {
		l.send(playerID, types.Error(err.Error()))
		return
	}

	if res.GameEnded {
		winner := "no winner"
		if res.End.Winner != nil {
			winner = res.End.Winner.Name
		}
		l.broadcast(types.ServerMessage{
			Type:        types.TypeGameEnded,
			Winner:      winner,
			FinalScores: res.End.FinalScores,
		}, "")
		l.log.Info("game ended by consecutive passes", zap.String("winner", winner))
		return
	}
	l.broadcast(types.ServerMessage{
		Type:          types.TypeTurnChanged,
		CurrentPlayer: l.room.CurrentPlayer(),
	}, "")
}

// send unicasts to one client. A full outbox means the client stopped
// draining; drop them and let their connection tear itself down.
func (l *Lobby) send(playerID string, m types.ServerMessage) {
	ch, ok := l.clients[playerID]
	if !ok {
		return
	}
	select {
	case ch <- m:
	default:
		close(ch)
		delete(l.clients, playerID)
		l.log.Warn("dropping slow client", zap.String("player", playerID))
	}
}

func (l *Lobby) broadcast(m types.ServerMessage, excludeID string) {
	for id := range l.clients {
		if id == excludeID {
			continue
		}
		l.send(id, m)
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // no more envelopes; the connection closes itself
		delete(l.clients, id)
	}
	l.unregister()
	l.cancel()
}
