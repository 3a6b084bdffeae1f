package tiles

// Tile is a single drawable letter. A joker has no fixed letter: Letter is
// empty and Joker is true. Jokers are interchangeable; nothing identifies one
// joker apart from another.
type Tile struct {
	Letter string `json:"letter"`
	Joker  bool   `json:"isJoker"`
}

func Letter(l string) Tile { return Tile{Letter: l} }

func Joker() Tile { return Tile{Joker: true} }

type LetterInfo struct {
	Count  int
	Points int
}

type Distribution map[string]LetterInfo

// JokerKey is the distribution entry for the blank tiles.
const JokerKey = ""

// HebrewDistribution seeds every new bag: 104 tiles across 22 letters plus
// two zero-point jokers.
var HebrewDistribution = Distribution{
	"א":      {Count: 6, Points: 2},
	"ב":      {Count: 4, Points: 3},
	"ג":      {Count: 2, Points: 5},
	"ד":      {Count: 4, Points: 3},
	"ה":      {Count: 8, Points: 1},
	"ו":      {Count: 12, Points: 1},
	"ז":      {Count: 1, Points: 8},
	"ח":      {Count: 3, Points: 4},
	"ט":      {Count: 1, Points: 8},
	"י":      {Count: 10, Points: 1},
	"כ":      {Count: 2, Points: 5},
	"ל":      {Count: 6, Points: 2},
	"מ":      {Count: 6, Points: 2},
	"נ":      {Count: 4, Points: 3},
	"ס":      {Count: 1, Points: 8},
	"ע":      {Count: 2, Points: 5},
	"פ":      {Count: 3, Points: 4},
	"צ":      {Count: 1, Points: 8},
	"ק":      {Count: 3, Points: 4},
	"ר":      {Count: 8, Points: 1},
	"ש":      {Count: 6, Points: 2},
	"ת":      {Count: 9, Points: 1},
	JokerKey: {Count: 2, Points: 0},
}

// TotalTiles is the count of the full multiset, i.e. the number of tiles in
// circulation for a room at all times.
func (d Distribution) TotalTiles() int {
	total := 0
	for _, info := range d {
		total += info.Count
	}
	return total
}

func (d Distribution) Points(letter string) int {
	return d[letter].Points
}
