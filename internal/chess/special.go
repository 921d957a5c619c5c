package chess

import "golang.org/x/exp/slices"

// Rules toggles behaviour beyond the core move set.
type Rules struct {
	// CastlingMoves generates castling destinations for a king on its
	// starting square. Only history and empty squares between king and rook
	// are consulted; attacked squares are not.
	CastlingMoves bool
}

type castleSide struct {
	rookFile int
	rookTo   int
	kingTo   int
	between  []int
}

var castleSides = [...]castleSide{
	{rookFile: 0, rookTo: 3, kingTo: 2, between: []int{1, 2, 3}},
	{rookFile: 7, rookTo: 5, kingTo: 6, between: []int{5, 6}},
}

// DetectSpecialMove tags the selection of p with the special move that
// applies to it and returns moves, extended with any destination the special
// move adds. The input slice is never modified.
func DetectSpecialMove(b *Board, h *History, p *Piece, moves []Square, rules Rules) (SpecialMove, []Square) {
	switch p.Kind {
	case Pawn:
		// Eligibility is judged before the move, one rank short.
		if p.Position.Rank == p.Team.promotionRank()-p.Team.forward() {
			return Promotion, moves
		}
		if target, ok := enPassantTarget(b, h, p); ok {
			return EnPassant, append(slices.Clip(moves), target)
		}
	case King:
		if !rules.CastlingMoves {
			break
		}
		if targets := castlingTargets(b, h, p); len(targets) > 0 {
			return Castling, append(slices.Clip(moves), targets...)
		}
	}
	return NoSpecialMove, moves
}

func enPassantTarget(b *Board, h *History, p *Piece) (Square, bool) {
	last, ok := h.Last()
	if !ok {
		return Square{}, false
	}

	enemy := b.At(last.To)
	if enemy == nil || enemy.Kind != Pawn || enemy.Team == p.Team {
		return Square{}, false
	}
	if abs(last.To.Rank-last.From.Rank) != 2 {
		return Square{}, false
	}
	if last.To.Rank != p.Position.Rank || abs(last.To.File-p.Position.File) != 1 {
		return Square{}, false
	}

	target := Square{File: last.To.File, Rank: p.Position.Rank + p.Team.forward()}
	return target, target.Valid()
}

func castlingTargets(b *Board, h *History, king *Piece) []Square {
	rank := king.Team.homeRank()
	home := Square{File: 4, Rank: rank}
	if king.Position != home || h.StartsFrom(home) {
		return nil
	}

	var targets []Square
	for _, side := range castleSides {
		rookSq := Square{File: side.rookFile, Rank: rank}
		rook := b.At(rookSq)
		if rook == nil || rook.Kind != Rook || rook.Team != king.Team || h.StartsFrom(rookSq) {
			continue
		}
		empty := true
		for _, file := range side.between {
			if b.At(Square{File: file, Rank: rank}) != nil {
				empty = false
				break
			}
		}
		if empty {
			targets = append(targets, Square{File: side.kingTo, Rank: rank})
		}
	}
	return targets
}

// captureEnPassant removes the pawn taken by the en passant move that was
// just recorded. It returns nil if the mover did not end up directly behind
// the pawn that double-stepped on the previous ply.
func captureEnPassant(b *Board, h *History) *Piece {
	prev, last, ok := h.LastTwo()
	if !ok {
		panic("chess: en passant resolved with fewer than two plies in history")
	}

	mover := b.At(last.To)
	enemy := b.At(prev.To)
	if mover == nil || enemy == nil || enemy.Kind != Pawn || enemy.Team == mover.Team {
		return nil
	}
	if mover.Position.File != enemy.Position.File || abs(mover.Position.Rank-enemy.Position.Rank) != 1 {
		return nil
	}
	return b.remove(enemy.Position)
}

// promote replaces a pawn standing on its final rank with a queen and
// returns the new record.
func promote(b *Board, p *Piece) *Piece {
	if p.Kind != Pawn || p.Position.Rank != p.Team.promotionRank() {
		return nil
	}
	return b.Put(Queen, p.Team, p.Position)
}

// castleRook moves the rook that belongs to a king which just landed on a
// castling file. The rook's path is not checked.
func castleRook(b *Board, king *Piece) bool {
	if king.Kind != King {
		return false
	}
	rank := king.Position.Rank
	for _, side := range castleSides {
		if king.Position.File != side.kingTo {
			continue
		}
		rook := b.At(Square{File: side.rookFile, Rank: rank})
		if rook == nil || rook.Kind != Rook || rook.Team != king.Team {
			return false
		}
		b.move(rook, Square{File: side.rookTo, Rank: rank})
		return true
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
