package chess

type direction struct {
	df, dr int
}

var (
	orthogonal = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	diagonal   = []direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	allAround  = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	knightJump = []direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

type generator func(b *Board, p *Piece) []Square

var generators = [...]generator{
	Pawn:   pawnMoves,
	Rook:   func(b *Board, p *Piece) []Square { return slide(b, p, orthogonal) },
	Knight: func(b *Board, p *Piece) []Square { return leap(b, p, knightJump) },
	Bishop: func(b *Board, p *Piece) []Square { return slide(b, p, diagonal) },
	Queen:  func(b *Board, p *Piece) []Square { return slide(b, p, allAround) },
	King:   func(b *Board, p *Piece) []Square { return leap(b, p, allAround) },
}

// CandidateMoves returns the squares p can reach by its movement pattern on
// b, ignoring whether the move leaves its own king attacked. Special moves
// are not included.
func CandidateMoves(b *Board, p *Piece) []Square {
	if p == nil || p.Kind <= NoKind || int(p.Kind) >= len(generators) {
		return nil
	}
	return generators[p.Kind](b, p)
}

func pawnMoves(b *Board, p *Piece) []Square {
	var moves []Square
	dir := p.Team.forward()

	one := p.Position.offset(0, dir)
	if one.Valid() && b.At(one) == nil {
		moves = append(moves, one)

		two := p.Position.offset(0, 2*dir)
		if p.Position.Rank == p.Team.pawnRank() && two.Valid() && b.At(two) == nil {
			moves = append(moves, two)
		}
	}

	for _, df := range [...]int{-1, 1} {
		sq := p.Position.offset(df, dir)
		if target := b.At(sq); target != nil && target.Team != p.Team {
			moves = append(moves, sq)
		}
	}
	return moves
}

// slide walks each ray until the edge or the first occupied square, which
// is included only when it holds an enemy.
func slide(b *Board, p *Piece, dirs []direction) []Square {
	var moves []Square
	for _, d := range dirs {
		for sq := p.Position.offset(d.df, d.dr); sq.Valid(); sq = sq.offset(d.df, d.dr) {
			target := b.At(sq)
			if target == nil {
				moves = append(moves, sq)
				continue
			}
			if target.Team != p.Team {
				moves = append(moves, sq)
			}
			break
		}
	}
	return moves
}

func leap(b *Board, p *Piece, offsets []direction) []Square {
	var moves []Square
	for _, d := range offsets {
		sq := p.Position.offset(d.df, d.dr)
		if !sq.Valid() {
			continue
		}
		if target := b.At(sq); target == nil || target.Team != p.Team {
			moves = append(moves, sq)
		}
	}
	return moves
}
