package chess

import (
	"fmt"
	"strings"
)

const boardSize = 8

var backRank = [boardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is the 8x8 grid of piece records, indexed [file][rank]. Every
// occupied cell holds a record whose Position equals the cell coordinates.
type Board struct {
	cells [boardSize][boardSize]*Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// NewStandardBoard returns a board with the 32 pieces of the standard
// starting position.
func NewStandardBoard() *Board {
	b := NewBoard()
	for file, kind := range backRank {
		b.Put(kind, White, Square{File: file, Rank: White.homeRank()})
		b.Put(Pawn, White, Square{File: file, Rank: White.pawnRank()})
		b.Put(kind, Black, Square{File: file, Rank: Black.homeRank()})
		b.Put(Pawn, Black, Square{File: file, Rank: Black.pawnRank()})
	}
	return b
}

// At returns the piece on sq, or nil when the square is empty or off the
// board.
func (b *Board) At(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return b.cells[sq.File][sq.Rank]
}

// Put creates a new record on sq, replacing whatever stood there.
func (b *Board) Put(kind PieceKind, team Team, sq Square) *Piece {
	if !sq.Valid() {
		panic(fmt.Sprintf("chess: put %s %s off the board at (%d,%d)", team, kind, sq.File, sq.Rank))
	}
	p := &Piece{Kind: kind, Team: team, Position: sq}
	b.cells[sq.File][sq.Rank] = p
	return p
}

// move relocates p to sq and keeps its recorded position in sync.
func (b *Board) move(p *Piece, to Square) {
	b.cells[p.Position.File][p.Position.Rank] = nil
	b.cells[to.File][to.Rank] = p
	p.Position = to
}

func (b *Board) remove(sq Square) *Piece {
	p := b.At(sq)
	if p != nil {
		b.cells[sq.File][sq.Rank] = nil
	}
	return p
}

// Clone copies the grid of references. Records are shared with b and must
// not be mutated through the clone.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Pieces returns every piece of team t in file-major order.
func (b *Board) Pieces(t Team) []*Piece {
	var pieces []*Piece
	for file := range b.cells {
		for _, p := range b.cells[file] {
			if p != nil && p.Team == t {
				pieces = append(pieces, p)
			}
		}
	}
	return pieces
}

// King returns team t's king, or nil if it has been captured.
func (b *Board) King(t Team) *Piece {
	for file := range b.cells {
		for _, p := range b.cells[file] {
			if p != nil && p.Team == t && p.Kind == King {
				return p
			}
		}
	}
	return nil
}

// verify panics if a cell's record disagrees with its coordinates.
func (b *Board) verify() {
	for file := range b.cells {
		for rank, p := range b.cells[file] {
			if p != nil && (p.Position.File != file || p.Position.Rank != rank) {
				panic(fmt.Sprintf("chess: cell %s holds %s", Square{File: file, Rank: rank}, p))
			}
		}
	}
}

// Cell is one occupied square of a Snapshot.
type Cell struct {
	Kind PieceKind `json:"kind"`
	Team Team      `json:"team"`
}

// Snapshot is a read-only copy of the board, indexed [file][rank]; nil
// cells are empty.
type Snapshot [boardSize][boardSize]*Cell

// Snapshot copies the board contents for rendering.
func (b *Board) Snapshot() Snapshot {
	var s Snapshot
	for file := range b.cells {
		for rank, p := range b.cells[file] {
			if p != nil {
				s[file][rank] = &Cell{Kind: p.Kind, Team: p.Team}
			}
		}
	}
	return s
}

// At returns the cell on sq, or nil when the square is empty or off the
// board.
func (s Snapshot) At(sq Square) *Cell {
	if !sq.Valid() {
		return nil
	}
	return s[sq.File][sq.Rank]
}

// String draws the board from White's side, rank 8 at the top.
func (s Snapshot) String() string {
	var sb strings.Builder
	for rank := boardSize - 1; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < boardSize; file++ {
			if c := s[file][rank]; c != nil {
				sb.WriteByte(c.Kind.Letter(c.Team))
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}
