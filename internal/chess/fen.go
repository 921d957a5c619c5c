package chess

import (
	"fmt"
	"strings"

	notnil "github.com/notnil/chess"
)

var kindFromNotnil = map[notnil.PieceType]PieceKind{
	notnil.Pawn:   Pawn,
	notnil.Rook:   Rook,
	notnil.Knight: Knight,
	notnil.Bishop: Bishop,
	notnil.Queen:  Queen,
	notnil.King:   King,
}

var notnilPieces = [2][King + 1]notnil.Piece{
	White: {
		Pawn:   notnil.WhitePawn,
		Rook:   notnil.WhiteRook,
		Knight: notnil.WhiteKnight,
		Bishop: notnil.WhiteBishop,
		Queen:  notnil.WhiteQueen,
		King:   notnil.WhiteKing,
	},
	Black: {
		Pawn:   notnil.BlackPawn,
		Rook:   notnil.BlackRook,
		Knight: notnil.BlackKnight,
		Bishop: notnil.BlackBishop,
		Queen:  notnil.BlackQueen,
		King:   notnil.BlackKing,
	},
}

// NewGameFromFEN starts a game from the board and side-to-move fields of a
// FEN string. Castling and en passant fields are parsed but not used, and
// the history starts empty.
func NewGameFromFEN(fen string, opts ...Option) (*Game, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, fmt.Errorf("invalid FEN: empty")
	}
	// notnil needs both kings to decode a position.
	if strings.Count(fields[0], "K") != 1 || strings.Count(fields[0], "k") != 1 {
		return nil, fmt.Errorf("invalid FEN: %w: each side needs exactly one king", ErrInvalidPosition)
	}

	var pos notnil.Position
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}

	b := NewBoard()
	for sq, pc := range pos.Board().SquareMap() {
		kind, ok := kindFromNotnil[pc.Type()]
		if !ok {
			continue
		}
		team := White
		if pc.Color() == notnil.Black {
			team = Black
		}
		b.Put(kind, team, Square{File: int(sq.File()), Rank: int(sq.Rank())})
	}

	turn := White
	if pos.Turn() == notnil.Black {
		turn = Black
	}

	g, err := NewGameFromBoard(b, turn, opts...)
	if err != nil {
		return nil, err
	}
	var fullmove int
	if len(fields) == 6 {
		if _, err := fmt.Sscanf(fields[5], "%d", &fullmove); err == nil && fullmove > 0 {
			g.startMove = fullmove
		}
	}
	return g, nil
}

// FEN encodes the current position. Castling rights are always "-" and the
// halfmove clock is always 0; the en passant square follows the last ply.
func (g *Game) FEN() string {
	squares := make(map[notnil.Square]notnil.Piece)
	for _, t := range []Team{White, Black} {
		for _, p := range g.board.Pieces(t) {
			squares[notnil.Square(p.Position.Rank*8+p.Position.File)] = notnilPieces[t][p.Kind]
		}
	}
	board := notnil.NewBoard(squares)

	turn := "w"
	if g.turn == Black {
		turn = "b"
	}
	fullmove := g.startMove + (g.history.Len()+int(g.startTurn))/2

	return fmt.Sprintf("%s %s - %s 0 %d", board.String(), turn, g.enPassantSquare(), fullmove)
}

func (g *Game) enPassantSquare() string {
	last, ok := g.history.Last()
	if !ok {
		return "-"
	}
	p := g.board.At(last.To)
	if p == nil || p.Kind != Pawn || abs(last.To.Rank-last.From.Rank) != 2 {
		return "-"
	}
	return Square{File: last.To.File, Rank: (last.From.Rank + last.To.Rank) / 2}.String()
}
