package chess

import (
	"fmt"

	"github.com/sourcegraph/conc/iter"
	"golang.org/x/exp/slices"
)

// FilterCheck drops every move in moves that would leave p's king attacked.
// Each candidate is played out on a private clone of b; b is only read.
func FilterCheck(b *Board, p *Piece, moves []Square) []Square {
	safe := make([]Square, 0, len(moves))
	for _, to := range moves {
		if kingSafeAfter(b, p, to) {
			safe = append(safe, to)
		}
	}
	return safe
}

// FilterCheckParallel is FilterCheck with candidates simulated concurrently,
// one clone per candidate.
func FilterCheckParallel(b *Board, p *Piece, moves []Square) []Square {
	keep := iter.Map(moves, func(to *Square) bool {
		return kingSafeAfter(b, p, *to)
	})

	safe := make([]Square, 0, len(moves))
	for i, ok := range keep {
		if ok {
			safe = append(safe, moves[i])
		}
	}
	return safe
}

func kingSafeAfter(b *Board, p *Piece, to Square) bool {
	if !to.Valid() {
		return false
	}

	king := b.King(p.Team)
	if king == nil {
		panic(fmt.Sprintf("chess: %s has no king", p.Team))
	}
	kingSq := king.Position
	if king == p {
		kingSq = to
	}

	sim := b.Clone()
	sim.cells[p.Position.File][p.Position.Rank] = nil
	sim.cells[to.File][to.Rank] = p

	return !sim.attacked(kingSq, p.Team.Opponent())
}

// attacked reports whether any piece of team by has a raw candidate move
// onto sq. Results are not check-filtered.
func (b *Board) attacked(sq Square, by Team) bool {
	for _, q := range b.Pieces(by) {
		if slices.Contains(CandidateMoves(b, q), sq) {
			return true
		}
	}
	return false
}

// InCheck reports whether team t's king is attacked on b. A team without a
// king is not in check.
func InCheck(b *Board, t Team) bool {
	king := b.King(t)
	if king == nil {
		return false
	}
	return b.attacked(king.Position, t.Opponent())
}
