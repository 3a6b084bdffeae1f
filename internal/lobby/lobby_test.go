package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shevetna/server/internal/game"
	"github.com/shevetna/server/internal/types"
)

// helper: receive one envelope with a timeout so tests never hang
func recvMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return m
	case <-time.After(within):
		t.Fatalf("timed out waiting for envelope")
		return types.ServerMessage{} // unreachable
	}
}

func recvNoMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			// channel closed → no further envelopes possible
			return
		}
		t.Fatalf("expected no envelope within %v, but got: %+v", within, m)
	case <-time.After(within):
		// good: nothing arrived
	}
}

// waitClosed drains ch until it closes or the deadline passes.
func waitClosed(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("outbox not closed within %v", within)
		}
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

type fixture struct {
	l            *Lobby
	unregistered chan struct{}
}

func newFixture(t *testing.T, roomID string) fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	unregistered := make(chan struct{}, 1)
	l := NewLobby(ctx, roomID, func() { unregistered <- struct{}{} }, zap.NewNop())
	return fixture{l: l, unregistered: unregistered}
}

// join registers a client and returns its outbox plus the room_joined payload.
func join(t *testing.T, l *Lobby, id, name string) (chan types.ServerMessage, types.ServerMessage) {
	t.Helper()
	out := make(chan types.ServerMessage, 16)
	reply := make(chan error, 1)
	l.Deliver(Join{PlayerID: id, Name: name, Outbox: out, Reply: reply})

	select {
	case err := <-reply:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for join reply")
	}
	joined := recvMsg(t, out, time.Second)
	require.Equal(t, types.TypeRoomJoined, joined.Type)
	return out, joined
}

func TestJoin_UnicastsRoomStateAndBroadcastsArrival(t *testing.T) {
	f := newFixture(t, "ABC123")

	out1, joined1 := join(t, f.l, "p1", "Dana")
	assert.Equal(t, "p1", joined1.PlayerID)
	assert.Equal(t, "ABC123", joined1.RoomID)
	assert.Len(t, joined1.MyTiles, game.RackSize)
	assert.Equal(t, "p1", joined1.CurrentPlayer)
	require.NotNil(t, joined1.GameStarted)
	assert.True(t, *joined1.GameStarted)

	_, joined2 := join(t, f.l, "p2", "Avi")
	assert.Len(t, joined2.Players, 2)

	arrival := recvMsg(t, out1, time.Second)
	assert.Equal(t, types.TypePlayerJoined, arrival.Type)
	require.NotNil(t, arrival.Player)
	assert.Equal(t, "p2", arrival.Player.ID)
	assert.Equal(t, "Avi", arrival.Player.Name)
}

func TestJoin_FullRoomRepliesError(t *testing.T) {
	f := newFixture(t, "FULL01")
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		join(t, f.l, id, "")
	}

	out := make(chan types.ServerMessage, 1)
	reply := make(chan error, 1)
	f.l.Deliver(Join{PlayerID: "p5", Name: "Noa", Outbox: out, Reply: reply})

	select {
	case err := <-reply:
		assert.ErrorIs(t, err, game.ErrRoomFull)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for join reply")
	}
	recvNoMsg(t, out, 50*time.Millisecond)
}

func TestPlay_FansOutBoardRackAndTurn(t *testing.T) {
	f := newFixture(t, "PLAY01")
	out1, joined1 := join(t, f.l, "p1", "Dana")
	out2, _ := join(t, f.l, "p2", "Avi")
	recvMsg(t, out1, time.Second) // drain p2's arrival

	first := joined1.MyTiles[0]
	f.l.Deliver(FromClient{PlayerID: "p1", Msg: types.ClientMessage{
		Type:  types.TypePlayWord,
		Tiles: []game.Placement{{Row: 7, Col: 7, Letter: first.Letter, Joker: first.Joker}},
		Score: 10,
	}})

	played := recvMsg(t, out2, time.Second)
	require.Equal(t, types.TypeWordPlayed, played.Type)
	assert.Equal(t, "p1", played.PlayerID)
	assert.Equal(t, "Dana", played.PlayerName)
	require.NotNil(t, played.Score)
	assert.Equal(t, 10, *played.Score)
	require.NotNil(t, played.Board)
	assert.NotNil(t, played.Board[7][7])
	assert.Equal(t, 10, played.Players["p1"].Score)

	// the mover additionally gets their refilled rack, privately
	require.Equal(t, types.TypeWordPlayed, recvMsg(t, out1, time.Second).Type)
	fresh := recvMsg(t, out1, time.Second)
	require.Equal(t, types.TypeNewTiles, fresh.Type)
	assert.Len(t, fresh.MyTiles, game.RackSize)

	turn := recvMsg(t, out2, time.Second)
	require.Equal(t, types.TypeTurnChanged, turn.Type)
	assert.Equal(t, "p2", turn.CurrentPlayer)
	assert.Equal(t, types.TypeTurnChanged, recvMsg(t, out1, time.Second).Type)
	recvNoMsg(t, out2, 50*time.Millisecond)
}

func TestPlay_OutOfTurnErrorIsUnicast(t *testing.T) {
	f := newFixture(t, "TURN01")
	out1, _ := join(t, f.l, "p1", "Dana")
	out2, joined2 := join(t, f.l, "p2", "Avi")
	recvMsg(t, out1, time.Second) // drain p2's arrival

	first := joined2.MyTiles[0]
	f.l.Deliver(FromClient{PlayerID: "p2", Msg: types.ClientMessage{
		Type:  types.TypePlayWord,
		Tiles: []game.Placement{{Row: 7, Col: 7, Letter: first.Letter, Joker: first.Joker}},
		Score: 50,
	}})

	fail := recvMsg(t, out2, time.Second)
	assert.Equal(t, types.TypeError, fail.Type)
	assert.Equal(t, game.ErrNotYourTurn.Error(), fail.Message)
	recvNoMsg(t, out1, 50*time.Millisecond)
}

func TestExchange_RackGoesToMoverAlone(t *testing.T) {
	f := newFixture(t, "SWAP01")
	out1, _ := join(t, f.l, "p1", "Dana")
	out2, _ := join(t, f.l, "p2", "Avi")
	recvMsg(t, out1, time.Second) // drain p2's arrival

	f.l.Deliver(FromClient{PlayerID: "p1", Msg: types.ClientMessage{
		Type:        types.TypeExchangeTiles,
		TileIndexes: []int{0, 1},
	}})

	swapped := recvMsg(t, out1, time.Second)
	require.Equal(t, types.TypeTilesExchanged, swapped.Type)
	assert.Equal(t, "p1", swapped.PlayerID)
	assert.Len(t, swapped.NewTiles, game.RackSize)

	turn := recvMsg(t, out2, time.Second)
	require.Equal(t, types.TypeTurnChanged, turn.Type)
	assert.Equal(t, "p2", turn.CurrentPlayer)
	require.NotNil(t, turn.TilesLeft)

	// p2 never sees the fresh rack
	assert.Equal(t, types.TypeTurnChanged, recvMsg(t, out1, time.Second).Type)
	recvNoMsg(t, out2, 50*time.Millisecond)
}

func TestPass_EndsGameAfterFullPassOut(t *testing.T) {
	f := newFixture(t, "PASS01")
	out1, _ := join(t, f.l, "p1", "Dana")
	out2, _ := join(t, f.l, "p2", "Avi")
	recvMsg(t, out1, time.Second) // drain p2's arrival

	passer := []string{"p1", "p2", "p1"}
	for _, id := range passer {
		f.l.Deliver(FromClient{PlayerID: id, Msg: types.ClientMessage{Type: types.TypePassTurn}})
		require.Equal(t, types.TypeTurnChanged, recvMsg(t, out1, time.Second).Type)
		require.Equal(t, types.TypeTurnChanged, recvMsg(t, out2, time.Second).Type)
	}

	f.l.Deliver(FromClient{PlayerID: "p2", Msg: types.ClientMessage{Type: types.TypePassTurn}})
	ended := recvMsg(t, out1, time.Second)
	require.Equal(t, types.TypeGameEnded, ended.Type)
	assert.NotEmpty(t, ended.Winner)
	assert.Len(t, ended.FinalScores, 2)
	assert.Equal(t, types.TypeGameEnded, recvMsg(t, out2, time.Second).Type)
}

func TestUnknownType_UnicastsError(t *testing.T) {
	f := newFixture(t, "HUH001")
	out1, _ := join(t, f.l, "p1", "Dana")

	f.l.Deliver(FromClient{PlayerID: "p1", Msg: types.ClientMessage{Type: "dance"}})
	fail := recvMsg(t, out1, time.Second)
	assert.Equal(t, types.TypeError, fail.Type)
	assert.Equal(t, "unrecognized message type", fail.Message)
}

func TestSlowClientIsDropped(t *testing.T) {
	f := newFixture(t, "SLOW01")

	// Buffer of one: room_joined fills it, so the next broadcast cannot land.
	out1 := make(chan types.ServerMessage, 1)
	reply := make(chan error, 1)
	f.l.Deliver(Join{PlayerID: "p1", Name: "Dana", Outbox: out1, Reply: reply})
	require.NoError(t, <-reply)

	join(t, f.l, "p2", "Avi")
	waitClosed(t, out1, time.Second)

	// Only the channel is dropped; the player leaves the roster when their
	// dead connection tears down and delivers Leave.
	viewReply := make(chan View, 1)
	f.l.Deliver(GetState{Reply: viewReply})
	v := recvView(t, viewReply, time.Second)
	assert.Equal(t, 1, v.NumClients)
	assert.Len(t, v.Snapshot.Players, 2)
}

func TestLeave_BroadcastsDepartureAndUnregistersWhenEmpty(t *testing.T) {
	f := newFixture(t, "BYE001")
	out1, _ := join(t, f.l, "p1", "Dana")
	out2, _ := join(t, f.l, "p2", "Avi")
	recvMsg(t, out1, time.Second) // drain p2's arrival

	f.l.Deliver(Leave{PlayerID: "p1"})
	waitClosed(t, out1, time.Second)

	left := recvMsg(t, out2, time.Second)
	require.Equal(t, types.TypePlayerLeft, left.Type)
	assert.Equal(t, "p1", left.PlayerID)
	assert.Equal(t, "Dana", left.PlayerName)

	f.l.Deliver(Leave{PlayerID: "p2"})
	waitClosed(t, out2, time.Second)

	select {
	case <-f.unregistered:
	case <-time.After(time.Second):
		t.Fatalf("empty room never unregistered itself")
	}
	select {
	case <-f.l.Done():
	case <-time.After(time.Second):
		t.Fatalf("lobby still running after last leave")
	}
}

func TestCheckIdle_ClosesStaleRoom(t *testing.T) {
	f := newFixture(t, "IDLE01")
	out1, _ := join(t, f.l, "p1", "Dana")

	f.l.Deliver(CheckIdle{Now: time.Now(), MaxIdle: time.Hour})
	recvNoMsg(t, out1, 50*time.Millisecond) // fresh room survives the sweep

	f.l.Deliver(CheckIdle{Now: time.Now().Add(2 * time.Hour), MaxIdle: time.Hour})
	waitClosed(t, out1, time.Second)

	select {
	case <-f.unregistered:
	case <-time.After(time.Second):
		t.Fatalf("idle room never unregistered itself")
	}
}

func TestGetState_ReflectsRoster(t *testing.T) {
	f := newFixture(t, "VIEW01")
	join(t, f.l, "p1", "Dana")

	reply := make(chan View, 1)
	f.l.Deliver(GetState{Reply: reply})
	v := recvView(t, reply, time.Second)

	assert.Equal(t, 1, v.NumClients)
	assert.Equal(t, "p1", v.Snapshot.CurrentPlayer)
	assert.True(t, v.Snapshot.GameStarted)
}
