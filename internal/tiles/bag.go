package tiles

import "math/rand/v2"

// Bag is the shared undrawn tile reserve for one room. It is plain data: the
// owning room serializes access, so there is no locking here.
type Bag struct {
	tiles []Tile
}

// NewBag builds the full multiset from dist and shuffles it.
func NewBag(dist Distribution) *Bag {
	b := &Bag{tiles: make([]Tile, 0, dist.TotalTiles())}
	for letter, info := range dist {
		t := Tile{Letter: letter, Joker: letter == JokerKey}
		for i := 0; i < info.Count; i++ {
			b.tiles = append(b.tiles, t)
		}
	}
	b.shuffle()
	return b
}

func (b *Bag) Len() int { return len(b.tiles) }

// Draw removes up to n tiles from the tail. Getting fewer than n back means
// the bag ran dry, which is not an error.
func (b *Bag) Draw(n int) []Tile {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	if n <= 0 {
		return nil
	}
	cut := len(b.tiles) - n
	drawn := make([]Tile, n)
	copy(drawn, b.tiles[cut:])
	b.tiles = b.tiles[:cut]
	return drawn
}

// Return puts tiles back and reshuffles the whole bag, not just the tail.
func (b *Bag) Return(ts []Tile) {
	b.tiles = append(b.tiles, ts...)
	b.shuffle()
}

func (b *Bag) shuffle() {
	rand.Shuffle(len(b.tiles), func(i, j int) {
		b.tiles[i], b.tiles[j] = b.tiles[j], b.tiles[i]
	})
}
