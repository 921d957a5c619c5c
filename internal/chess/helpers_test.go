package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func sq(name string) Square {
	s, err := ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return s
}

func squares(names ...string) []Square {
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, sq(n))
	}
	return out
}

type placement struct {
	kind PieceKind
	team Team
	at   string
}

func boardOf(ps ...placement) *Board {
	b := NewBoard()
	for _, p := range ps {
		b.Put(p.kind, p.team, sq(p.at))
	}
	return b
}

func mustGame(t *testing.T, fen string, opts ...Option) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen, opts...)
	require.NoError(t, err)
	return g
}

func mustMove(t *testing.T, g *Game, from, to string) MoveResult {
	t.Helper()
	res, err := g.Move(sq(from), sq(to))
	require.NoError(t, err, "move %s%s", from, to)
	require.True(t, res.Applied)
	return res
}
