package chess

import (
	"fmt"
	"strings"
)

// Team is one of the two sides. There are no neutral pieces.
type Team int

const (
	White Team = iota
	Black
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == White {
		return Black
	}
	return White
}

// forward is the rank delta a pawn of this team advances by.
func (t Team) forward() int {
	if t == White {
		return 1
	}
	return -1
}

// homeRank is the rank the team's back-rank pieces start on.
func (t Team) homeRank() int {
	if t == White {
		return 0
	}
	return 7
}

// pawnRank is the rank the team's pawns start on.
func (t Team) pawnRank() int {
	if t == White {
		return 1
	}
	return 6
}

// promotionRank is the final rank for the team's pawns.
func (t Team) promotionRank() int {
	if t == White {
		return 7
	}
	return 0
}

func (t Team) String() string {
	if t == White {
		return "white"
	}
	return "black"
}

func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "white", "w":
		*t = White
	case "black", "b":
		*t = Black
	default:
		return fmt.Errorf("unknown team %q", text)
	}
	return nil
}

// PieceKind identifies how a piece moves. The zero value is no piece.
type PieceKind int

const (
	NoKind PieceKind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindNames = [...]string{
	NoKind: "",
	Pawn:   "pawn",
	Rook:   "rook",
	Knight: "knight",
	Bishop: "bishop",
	Queen:  "queen",
	King:   "king",
}

func (k PieceKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("PieceKind(%d)", int(k))
	}
	return kindNames[k]
}

// Letter returns the FEN letter for the kind, upper case for white.
func (k PieceKind) Letter(t Team) byte {
	var c byte
	switch k {
	case Pawn:
		c = 'p'
	case Rook:
		c = 'r'
	case Knight:
		c = 'n'
	case Bishop:
		c = 'b'
	case Queen:
		c = 'q'
	case King:
		c = 'k'
	default:
		return '.'
	}
	if t == White {
		c -= 'a' - 'A'
	}
	return c
}

func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = PieceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", text)
}

// Square is a (file, rank) pair. Both coordinates are in [0,8) for squares
// on the board; anything else is invalid and never dereferenced.
type Square struct {
	File int
	Rank int
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s.File >= 0 && s.File < boardSize && s.Rank >= 0 && s.Rank < boardSize
}

func (s Square) offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// String returns algebraic notation ("e4"), or "-" for off-board squares.
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File, s.Rank+1)
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOffBoard, s.File, s.Rank)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// ParseSquare parses algebraic notation such as "e2".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrOffBoard, s)
	}

	sq := Square{File: int(s[0]) - 'a', Rank: int(s[1]) - '1'}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrOffBoard, s)
	}
	return sq, nil
}

// Piece is a piece record owned by a Board. Its identity survives moves;
// only promotion replaces a record.
type Piece struct {
	Kind     PieceKind
	Team     Team
	Position Square
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s on %s", p.Team, p.Kind, p.Position)
}

// SpecialMove tags a selection (and the move applied from it) with the
// special rule that applies to it.
type SpecialMove int

const (
	NoSpecialMove SpecialMove = iota
	EnPassant
	Castling
	Promotion
)

func (m SpecialMove) String() string {
	switch m {
	case EnPassant:
		return "en_passant"
	case Castling:
		return "castling"
	case Promotion:
		return "promotion"
	default:
		return "none"
	}
}

func (m SpecialMove) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SpecialMove) UnmarshalText(text []byte) error {
	for _, candidate := range []SpecialMove{NoSpecialMove, EnPassant, Castling, Promotion} {
		if candidate.String() == string(text) {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown special move %q", text)
}

// MoveRecord is one ply.
type MoveRecord struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m MoveRecord) String() string {
	return m.From.String() + m.To.String()
}

// MoveResult reports the outcome of ApplyMove.
type MoveResult struct {
	Applied   bool        `json:"applied"`
	From      Square      `json:"from"`
	To        Square      `json:"to"`
	Piece     PieceKind   `json:"piece"`
	Captured  PieceKind   `json:"captured,omitempty"`
	Special   SpecialMove `json:"special"`
	Check     bool        `json:"check"`
	Checkmate bool        `json:"checkmate"`
	Winner    *Team       `json:"winner,omitempty"`
	Turn      Team        `json:"turn"`
	FEN       string      `json:"fen"`
}

// ParseMove parses a ply in coordinate notation such as "e2e4".
func ParseMove(s string) (MoveRecord, error) {
	if len(s) != 4 {
		return MoveRecord{}, fmt.Errorf("invalid move %q: want four characters like e2e4", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return MoveRecord{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return MoveRecord{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return MoveRecord{From: from, To: to}, nil
}
