package game

import "slices"

// CurrentPlayer returns the id whose turn it is, or "" for an empty roster.
func (r *Room) CurrentPlayer() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[r.turn]
}

func (r *Room) advanceTurn() {
	if len(r.order) > 0 {
		r.turn = (r.turn + 1) % len(r.order)
	}
}

// removeFromOrder splices id out of the rotation. When the cursor runs past
// the new end it resets to 0, which can hand the turn to a different player
// than a clamp would; TestLeaveMidRosterResetsCursor pins this behavior.
func (r *Room) removeFromOrder(id string) {
	r.order = slices.DeleteFunc(r.order, func(other string) bool { return other == id })
	if r.turn >= len(r.order) && len(r.order) > 0 {
		r.turn = 0
	}
}

// passedOut reports whether every player has passed twice in a row. The
// threshold tracks the live roster size, not the size when passing started.
func (r *Room) passedOut() bool {
	return r.passes >= 2*len(r.players)
}
