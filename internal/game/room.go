package game

import (
	"slices"
	"time"

	"github.com/shevetna/server/internal/tiles"
)

const (
	// MaxPlayers caps the roster per room.
	MaxPlayers = 4
	// RackSize is the nominal hand size. A rack only exceeds it transiently
	// and only shrinks below it when the bag cannot refill.
	RackSize = 7
	// minExchangeBag is the bag floor below which exchanging is refused.
	minExchangeBag = 7
)

// anonymousName is the display name for players who join without one.
const anonymousName = "שחקן אנונימי"

type Player struct {
	ID       string
	Name     string
	Score    int
	Rack     []tiles.Tile
	JoinedAt time.Time
}

// Room is one isolated game: board, roster, bag and turn rotation. It is a
// pure state machine with no I/O; the owning lobby goroutine serializes every
// call, so operations here never lock.
type Room struct {
	ID string

	players      map[string]*Player
	order        []string // join order, doubles as turn order
	turn         int
	board        Board
	bag          *tiles.Bag
	started      bool
	passes       int
	lastActivity time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		ID:           id,
		players:      make(map[string]*Player),
		bag:          tiles.NewBag(tiles.HebrewDistribution),
		lastActivity: time.Now(),
	}
}

func (r *Room) PlayerCount() int { return len(r.players) }

func (r *Room) PlayerName(id string) string {
	if p, ok := r.players[id]; ok {
		return p.Name
	}
	return ""
}

func (r *Room) TilesLeft() int { return r.bag.Len() }

func (r *Room) Started() bool { return r.started }

func (r *Room) LastActivity() time.Time { return r.lastActivity }

func (r *Room) touch() { r.lastActivity = time.Now() }

// deal moves up to count tiles from the bag onto the player's rack and
// returns how many actually moved.
func (r *Room) deal(p *Player, count int) int {
	drawn := r.bag.Draw(count)
	p.Rack = append(p.Rack, drawn...)
	return len(drawn)
}

// Join registers a new player, deals their opening rack and starts the room
// on the first join. Fails with ErrRoomFull at capacity.
func (r *Room) Join(id, name string) (*Player, error) {
	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if name == "" {
		name = anonymousName
	}

	p := &Player{ID: id, Name: name, JoinedAt: time.Now()}
	r.players[id] = p
	r.order = append(r.order, id)
	r.deal(p, RackSize)

	if !r.started {
		r.started = true
		r.turn = 0
	}
	r.touch()
	return p, nil
}

// Leave removes the player, returns their whole rack to the bag (reshuffled)
// and fixes the turn cursor. The second result reports whether the roster is
// now empty, which is the registry's cue to tear the room down.
func (r *Room) Leave(id string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return nil, len(r.players) == 0
	}

	r.bag.Return(p.Rack)
	p.Rack = nil
	delete(r.players, id)
	r.removeFromOrder(id)
	r.touch()
	return p, len(r.players) == 0
}

type PlayResult struct {
	Rack  []tiles.Tile
	Score int
	// Missing lists placements for which no matching rack tile was found.
	// Those tiles were skipped, not removed; the move still went through.
	Missing []Placement
}

// PlayWord applies a word: remove the played tiles from the rack, write them
// to the board, credit the claimed score verbatim, refill the rack and rotate
// the turn. The score and the placement geometry are trusted as-is — only
// turn ownership and rack inventory are checked, and a placement the player
// does not actually hold is skipped rather than rejected.
func (r *Room) PlayWord(id string, placements []Placement, score int) (PlayResult, error) {
	p, ok := r.players[id]
	if !ok || r.CurrentPlayer() != id {
		return PlayResult{}, ErrNotYourTurn
	}
	if len(placements) == 0 {
		return PlayResult{}, ErrNoTilesPlayed
	}

	removed := 0
	var missing []Placement
	for _, pl := range placements {
		at := rackIndex(p.Rack, pl)
		if at < 0 {
			missing = append(missing, pl)
			continue
		}
		p.Rack = slices.Delete(p.Rack, at, at+1)
		removed++
	}

	// Every in-range placement lands on the board, matched or not.
	for _, pl := range placements {
		r.board.place(pl)
	}

	p.Score += score
	r.deal(p, removed) // refill exactly what was removed, not what was sent

	r.advanceTurn()
	r.passes = 0
	r.touch()

	return PlayResult{Rack: slices.Clone(p.Rack), Score: score, Missing: missing}, nil
}

// rackIndex finds the first rack tile matching a placement: jokers match any
// joker (they are fungible, matched by blank status, never by identity),
// letters match the first non-joker tile with the same letter.
func rackIndex(rack []tiles.Tile, pl Placement) int {
	for i, t := range rack {
		if pl.Joker {
			if t.Joker {
				return i
			}
			continue
		}
		if !t.Joker && t.Letter == pl.Letter {
			return i
		}
	}
	return -1
}

type ExchangeResult struct {
	Rack []tiles.Tile
}

// Exchange swaps the rack entries at the given indexes for fresh draws.
// Refused when the bag holds fewer than seven tiles. Indexes are handled
// highest first so earlier removals do not shift later ones; out-of-range
// indexes are ignored. The rack size never changes.
func (r *Room) Exchange(id string, indexes []int) (ExchangeResult, error) {
	p, ok := r.players[id]
	if !ok || r.CurrentPlayer() != id {
		return ExchangeResult{}, ErrNotYourTurn
	}
	if r.bag.Len() < minExchangeBag {
		return ExchangeResult{}, ErrBagLow
	}
	if len(indexes) == 0 {
		return ExchangeResult{}, ErrNoIndexes
	}

	sorted := slices.Clone(indexes)
	slices.SortFunc(sorted, func(a, b int) int { return b - a })

	var returned []tiles.Tile
	for _, i := range sorted {
		if i < 0 || i >= len(p.Rack) {
			continue
		}
		returned = append(returned, p.Rack[i])
		p.Rack = slices.Delete(p.Rack, i, i+1)
	}

	r.bag.Return(returned)
	r.deal(p, len(returned))

	r.advanceTurn()
	r.passes = 0
	r.touch()

	return ExchangeResult{Rack: slices.Clone(p.Rack)}, nil
}

type PassResult struct {
	GameEnded bool
	End       *GameEnd
}

// Pass rotates the turn and counts the pass. Once every player has passed
// twice in a row the game ends.
func (r *Room) Pass(id string) (PassResult, error) {
	if _, ok := r.players[id]; !ok || r.CurrentPlayer() != id {
		return PassResult{}, ErrNotYourTurn
	}

	r.advanceTurn()
	r.passes++
	r.touch()

	if r.passedOut() {
		return PassResult{GameEnded: true, End: r.EndGame()}, nil
	}
	return PassResult{}, nil
}

type FinalScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type GameEnd struct {
	Winner      *Player
	FinalScores []FinalScore
}

// EndGame closes the game and picks the winner: the strictly highest score,
// scanned in join order, so the earliest-joined leader wins a tie. Winner is
// nil for an empty roster. The room drops back to not-started.
func (r *Room) EndGame() *GameEnd {
	end := &GameEnd{}
	highest := -1
	for _, id := range r.order {
		p := r.players[id]
		end.FinalScores = append(end.FinalScores, FinalScore{Name: p.Name, Score: p.Score})
		if p.Score > highest {
			highest = p.Score
			end.Winner = p
		}
	}
	r.started = false
	return end
}
