package lobby

import (
	"time"

	"github.com/shevetna/server/internal/game"
	"github.com/shevetna/server/internal/types"
)

type Msg interface{ isLobbyMsg() }

// Join registers a connection with the room. Outbox is where this client
// receives envelopes; ownership of the channel passes to the lobby on
// success, which closes it when the client leaves or the room shuts down.
type Join struct {
	PlayerID string
	Name     string
	Outbox   chan types.ServerMessage
	Reply    chan error
}

func (Join) isLobbyMsg() {}

// FromClient carries one decoded inbound envelope from a joined connection.
type FromClient struct {
	PlayerID string
	Msg      types.ClientMessage
}

func (FromClient) isLobbyMsg() {}

type Leave struct{ PlayerID string }

func (Leave) isLobbyMsg() {}

// CheckIdle asks the room to tear itself down if its roster is empty or it
// has been idle past MaxIdle. Sent by the registry sweep.
type CheckIdle struct {
	Now     time.Time
	MaxIdle time.Duration
}

func (CheckIdle) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// GetState reflects internal state for tests without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	NumClients int
	Snapshot   game.Snapshot
}
