package chess

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// Phase is the selection state of a Game.
type Phase int

const (
	WaitingForSelection Phase = iota
	PieceSelected
	Checkmate
)

func (p Phase) String() string {
	switch p {
	case PieceSelected:
		return "piece_selected"
	case Checkmate:
		return "checkmate"
	default:
		return "waiting_for_selection"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{WaitingForSelection, PieceSelected, Checkmate} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger used for rejected selections and moves.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithCastlingMoves enables castling move generation. Without it a king
// never gets a two-file destination, so the rook relocation after e1c1,
// e1g1, e8c8 or e8g8 cannot happen.
func WithCastlingMoves() Option {
	return func(g *Game) {
		g.rules.CastlingMoves = true
	}
}

// WithParallelCheckFilter simulates candidate moves concurrently.
func WithParallelCheckFilter() Option {
	return func(g *Game) {
		g.filter = FilterCheckParallel
	}
}

// Game owns the board, the move history and whose turn it is, and runs the
// select-then-move cycle. It is not safe for concurrent use. Castling is
// only offered when the game is built with WithCastlingMoves.
type Game struct {
	board    *Board
	history  History
	turn     Team
	captured [2][]*Piece
	phase    Phase
	winner   Team

	startTurn Team
	startMove int

	selected *Piece
	legal    []Square
	special  SpecialMove

	rules  Rules
	filter func(*Board, *Piece, []Square) []Square
	logger zerolog.Logger
}

func newGame(opts []Option) *Game {
	g := &Game{
		filter: FilterCheck,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGame starts a game from the standard position with White to move.
func NewGame(opts ...Option) *Game {
	g := newGame(opts)
	g.Restart()
	return g
}

// NewGameFromBoard starts a game from an arbitrary position. Each team must
// have exactly one king. The history starts empty.
func NewGameFromBoard(b *Board, turn Team, opts ...Option) (*Game, error) {
	for _, t := range []Team{White, Black} {
		kings := 0
		for _, p := range b.Pieces(t) {
			if p.Kind == King {
				kings++
			}
		}
		if kings != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidPosition, t, kings)
		}
	}
	b.verify()

	g := newGame(opts)
	g.reset(b, turn, 1)
	return g, nil
}

// Restart discards all state and sets up the standard position.
func (g *Game) Restart() {
	g.reset(NewStandardBoard(), White, 1)
}

func (g *Game) reset(b *Board, turn Team, fullmove int) {
	g.board = b
	g.history = History{}
	g.turn = turn
	g.captured = [2][]*Piece{}
	g.phase = WaitingForSelection
	g.winner = White
	g.startTurn = turn
	g.startMove = fullmove
	g.clearSelection()
}

func (g *Game) clearSelection() {
	g.selected = nil
	g.legal = nil
	g.special = NoSpecialMove
	if g.phase == PieceSelected {
		g.phase = WaitingForSelection
	}
}

// SelectPiece selects the piece on sq and returns its legal destinations.
// On rejection it returns no squares and an error, and nothing changes.
func (g *Game) SelectPiece(sq Square) ([]Square, error) {
	if err := g.selectable(sq); err != nil {
		g.logger.Debug().Err(err).Str("square", sq.String()).Str("turn", g.turn.String()).Msg("Selection rejected")
		return nil, err
	}

	p := g.board.At(sq)
	special, moves := g.legalMoves(p)
	if len(moves) == 0 {
		g.logger.Debug().Str("square", sq.String()).Str("piece", p.Kind.String()).Msg("Selected piece has no legal moves")
		return nil, ErrNoLegalMoves
	}

	g.selected = p
	g.legal = moves
	g.special = special
	g.phase = PieceSelected
	return slices.Clone(moves), nil
}

func (g *Game) selectable(sq Square) error {
	if g.phase == Checkmate {
		return ErrGameOver
	}
	if !sq.Valid() {
		return fmt.Errorf("%w: (%d,%d)", ErrOffBoard, sq.File, sq.Rank)
	}
	p := g.board.At(sq)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrEmptySquare, sq)
	}
	if p.Team != g.turn {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, g.turn)
	}
	return nil
}

func (g *Game) legalMoves(p *Piece) (SpecialMove, []Square) {
	moves := CandidateMoves(g.board, p)
	special, moves := DetectSpecialMove(g.board, &g.history, p, moves, g.rules)
	return special, g.filter(g.board, p, moves)
}

// Deselect drops the current selection, if any.
func (g *Game) Deselect() {
	g.clearSelection()
}

// Selection returns the selected square and the special move it was tagged
// with. ok is false when nothing is selected.
func (g *Game) Selection() (sq Square, special SpecialMove, ok bool) {
	if g.selected == nil {
		return Square{}, NoSpecialMove, false
	}
	return g.selected.Position, g.special, true
}

// ApplyMove moves the selected piece to to. A destination outside the legal
// set cancels the selection and leaves the board untouched.
func (g *Game) ApplyMove(to Square) (MoveResult, error) {
	switch g.phase {
	case Checkmate:
		return MoveResult{}, ErrGameOver
	case WaitingForSelection:
		return MoveResult{}, ErrNoSelection
	}

	p, special := g.selected, g.special
	target := g.board.At(to)
	if !slices.Contains(g.legal, to) || (target != nil && target.Team == p.Team) {
		g.logger.Debug().Str("from", p.Position.String()).Str("to", to.String()).Msg("Illegal destination, selection cancelled")
		g.clearSelection()
		return MoveResult{}, fmt.Errorf("%w: %s to %s", ErrIllegalDestination, p.Position, to)
	}
	g.clearSelection()

	from := p.Position
	result := MoveResult{From: from, To: to, Piece: p.Kind}

	if target != nil {
		g.board.remove(to)
		g.captured[p.Team] = append(g.captured[p.Team], target)
		result.Captured = target.Kind
	}
	g.board.move(p, to)
	g.history.Append(MoveRecord{From: from, To: to})
	g.turn = g.turn.Opponent()

	switch special {
	case EnPassant:
		if victim := captureEnPassant(g.board, &g.history); victim != nil {
			g.captured[p.Team] = append(g.captured[p.Team], victim)
			result.Captured = victim.Kind
			result.Special = EnPassant
		}
	case Promotion:
		if queen := promote(g.board, p); queen != nil {
			result.Special = Promotion
		}
	case Castling:
		if castleRook(g.board, p) {
			result.Special = Castling
		}
	}
	g.board.verify()

	if target != nil && target.Kind == King {
		g.phase = Checkmate
		g.winner = p.Team
		winner := p.Team
		result.Checkmate = true
		result.Winner = &winner
		g.logger.Info().Str("winner", winner.String()).Int("plies", g.history.Len()).Msg("King captured")
	} else {
		result.Check = InCheck(g.board, g.turn)
	}

	result.Applied = true
	result.Turn = g.turn
	result.FEN = g.FEN()
	return result, nil
}

// Move selects the piece on from and applies the move to to.
func (g *Game) Move(from, to Square) (MoveResult, error) {
	if _, err := g.SelectPiece(from); err != nil {
		return MoveResult{}, err
	}
	return g.ApplyMove(to)
}

// LegalMoves returns the destinations of the current selection.
func (g *Game) LegalMoves() []Square {
	return slices.Clone(g.legal)
}

// InCheck reports whether the side to move has its king attacked.
func (g *Game) InCheck() bool {
	return InCheck(g.board, g.turn)
}

// Board returns a snapshot of the board for rendering.
func (g *Game) Board() Snapshot {
	return g.board.Snapshot()
}

// Turn returns the team to move.
func (g *Game) Turn() Team {
	return g.turn
}

// Phase returns the selection state.
func (g *Game) Phase() Phase {
	return g.phase
}

// Winner returns the team that captured the opposing king. ok is false
// while the game is running.
func (g *Game) Winner() (winner Team, ok bool) {
	return g.winner, g.phase == Checkmate
}

// History returns the plies played so far.
func (g *Game) History() []MoveRecord {
	return g.history.Moves()
}

// Captured returns the kinds captured by team t, in capture order.
func (g *Game) Captured(t Team) []PieceKind {
	kinds := make([]PieceKind, 0, len(g.captured[t]))
	for _, p := range g.captured[t] {
		kinds = append(kinds, p.Kind)
	}
	return kinds
}
