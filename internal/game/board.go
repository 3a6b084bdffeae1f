package game

// BoardSize is the fixed grid dimension.
const BoardSize = 15

// Cell is one placed tile. For a joker, ChosenLetter records which letter it
// stands in for; that is scoring/display information only.
type Cell struct {
	Letter       string `json:"letter"`
	Joker        bool   `json:"isJoker"`
	ChosenLetter string `json:"chosenLetter,omitempty"`
}

type Board [BoardSize][BoardSize]*Cell

// Placement is one tile of a submitted word, board coordinates included.
// Field names follow the wire protocol.
type Placement struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	Letter       string `json:"letter"`
	Joker        bool   `json:"isJoker,omitempty"`
	ChosenLetter string `json:"chosenLetter,omitempty"`
}

// place writes p onto the grid. Out-of-range placements are dropped, reported
// by the false return. An occupied cell is overwritten; the server trusts the
// client not to stack tiles and does not guard against it.
func (b *Board) place(p Placement) bool {
	if p.Row < 0 || p.Row >= BoardSize || p.Col < 0 || p.Col >= BoardSize {
		return false
	}
	b[p.Row][p.Col] = &Cell{Letter: p.Letter, Joker: p.Joker, ChosenLetter: p.ChosenLetter}
	return true
}

func (b *Board) occupied() int {
	n := 0
	for i := range b {
		for j := range b[i] {
			if b[i][j] != nil {
				n++
			}
		}
	}
	return n
}
