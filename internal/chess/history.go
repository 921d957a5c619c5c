package chess

import "golang.org/x/exp/slices"

// History is the append-only list of plies played so far.
type History struct {
	moves []MoveRecord
}

func (h *History) Append(m MoveRecord) {
	h.moves = append(h.moves, m)
}

func (h *History) Len() int {
	return len(h.moves)
}

// Last returns the most recent ply. ok is false on an empty history.
func (h *History) Last() (last MoveRecord, ok bool) {
	if len(h.moves) == 0 {
		return MoveRecord{}, false
	}
	return h.moves[len(h.moves)-1], true
}

// LastTwo returns the two most recent plies, oldest first. ok is false when
// fewer than two have been played.
func (h *History) LastTwo() (prev, last MoveRecord, ok bool) {
	n := len(h.moves)
	if n < 2 {
		return MoveRecord{}, MoveRecord{}, false
	}
	return h.moves[n-2], h.moves[n-1], true
}

// StartsFrom reports whether any ply so far left sq.
func (h *History) StartsFrom(sq Square) bool {
	return slices.IndexFunc(h.moves, func(m MoveRecord) bool { return m.From == sq }) >= 0
}

// Moves returns a copy of the plies in order.
func (h *History) Moves() []MoveRecord {
	return slices.Clone(h.moves)
}
