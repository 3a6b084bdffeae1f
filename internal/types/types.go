package types

import (
	"github.com/shevetna/server/internal/game"
	"github.com/shevetna/server/internal/tiles"
)

// Inbound message types.
const (
	TypeJoinRoom      = "join_room"
	TypePlayWord      = "play_word"
	TypeExchangeTiles = "exchange_tiles"
	TypePassTurn      = "pass_turn"
)

// Outbound message types.
const (
	TypeRoomJoined     = "room_joined"
	TypePlayerJoined   = "player_joined"
	TypePlayerLeft     = "player_left"
	TypeWordPlayed     = "word_played"
	TypeNewTiles       = "new_tiles"
	TypeTilesExchanged = "tiles_exchanged"
	TypeTurnChanged    = "turn_changed"
	TypeGameEnded      = "game_ended"
	TypeError          = "error"
)

type ClientMessage struct {
	Type        string           `json:"type"`
	RoomID      string           `json:"roomId,omitempty"`
	PlayerName  string           `json:"playerName,omitempty"`
	Tiles       []game.Placement `json:"tiles,omitempty"`
	Score       int              `json:"score,omitempty"`
	TileIndexes []int            `json:"tileIndexes,omitempty"`
}

// ServerMessage is the single outbound envelope; each message type fills its
// own subset of fields. Pointer fields distinguish "absent" from a meaningful
// zero (a score of 0, an empty bag, a stopped game).
type ServerMessage struct {
	Type          string                     `json:"type"`
	Message       string                     `json:"message,omitempty"`
	PlayerID      string                     `json:"playerId,omitempty"`
	PlayerName    string                     `json:"playerName,omitempty"`
	RoomID        string                     `json:"roomId,omitempty"`
	MyTiles       []tiles.Tile               `json:"myTiles,omitempty"`
	NewTiles      []tiles.Tile               `json:"newTiles,omitempty"`
	Player        *game.PlayerInfo           `json:"player,omitempty"`
	Board         *game.Board                `json:"board,omitempty"`
	Players       map[string]game.PlayerInfo `json:"players,omitempty"`
	CurrentPlayer string                     `json:"currentPlayer,omitempty"`
	TilesLeft     *int                       `json:"tilesLeft,omitempty"`
	GameStarted   *bool                      `json:"gameStarted,omitempty"`
	Score         *int                       `json:"score,omitempty"`
	Winner        string                     `json:"winner,omitempty"`
	FinalScores   []game.FinalScore          `json:"finalScores,omitempty"`
}

// Error builds the unicast failure envelope.
func Error(message string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: message}
}

func IntPtr(v int) *int { return &v }

func BoolPtr(v bool) *bool { return &v }
