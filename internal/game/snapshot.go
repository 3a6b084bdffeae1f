package game

// PlayerInfo is the public slice of a player: no rack, no connection.
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Snapshot is the shared-state payload attached to broadcasts. Racks are
// deliberately absent; each player learns only their own via unicasts.
type Snapshot struct {
	Board         Board                 `json:"board"`
	Players       map[string]PlayerInfo `json:"players"`
	CurrentPlayer string                `json:"currentPlayer"`
	TilesLeft     int                   `json:"tilesLeft"`
	GameStarted   bool                  `json:"gameStarted"`
}

// Snapshot derives the current public state. It reads, never mutates, so two
// calls without an intervening move yield the same value.
func (r *Room) Snapshot() Snapshot {
	return Snapshot{
		Board:         r.board,
		Players:       r.Roster(),
		CurrentPlayer: r.CurrentPlayer(),
		TilesLeft:     r.bag.Len(),
		GameStarted:   r.started,
	}
}

// Roster returns the public player map alone, for messages that carry the
// roster without the board.
func (r *Room) Roster() map[string]PlayerInfo {
	players := make(map[string]PlayerInfo, len(r.players))
	for id, p := range r.players {
		players[id] = PlayerInfo{ID: p.ID, Name: p.Name, Score: p.Score}
	}
	return players
}
