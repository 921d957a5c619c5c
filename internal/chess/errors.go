package chess

import "errors"

var (
	ErrOffBoard           = errors.New("square is off the board")
	ErrEmptySquare        = errors.New("no piece on square")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNoLegalMoves       = errors.New("piece has no legal moves")
	ErrNoSelection        = errors.New("no piece selected")
	ErrIllegalDestination = errors.New("illegal destination")
	ErrGameOver           = errors.New("game is over")
	ErrInvalidPosition    = errors.New("invalid position")
)
