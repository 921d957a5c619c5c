package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/azrachess/azrachess/internal/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, "", []string{"e2e4", "e7e5", "g1f3"})
	require.NoError(t, err)

	want := "8 rnbqkbnr\n" +
		"7 pppp.ppp\n" +
		"6 ........\n" +
		"5 ....p...\n" +
		"4 ....P...\n" +
		"3 .....N..\n" +
		"2 PPPP.PPP\n" +
		"1 RNBQKB.R\n" +
		"  abcdefgh\n" +
		"turn: black\n" +
		"fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b - - 0 2\n"
	assert.Equal(t, want, out.String())
}

func TestReplayStopsAtFirstRejectedMove(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, "", []string{"e2e4", "e2e4", "e7e5"})
	require.Error(t, err)
	assert.ErrorIs(t, err, chess.ErrEmptySquare)
	assert.Contains(t, err.Error(), "move 2")
	assert.Contains(t, out.String(), "turn: black\n")
}

func TestReplayRejectsBadNotation(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, "", []string{"e2-e4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move 1")
	assert.Contains(t, out.String(), "turn: white\n")
}

func TestReplayFromFENReportsWinner(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, replay(&out, "4k3/4Q3/8/8/8/8/8/4K3 w - - 0 1", []string{"E7E8"}))
	assert.Contains(t, out.String(), "winner: white\n")
}

func TestReplayReportsCheck(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, replay(&out, "", []string{"f2f3", "e7e5", "g2g4", "d8h4"}))
	assert.Contains(t, out.String(), "\ncheck\n")
}

func TestReplayWithCastling(t *testing.T) {
	var out bytes.Buffer
	err := replay(&out, "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", []string{"e1g1"}, chess.WithCastlingMoves())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "fen: 4k3/8/8/8/8/8/8/R4RK1 b - - 0 1\n")

	out.Reset()
	err = replay(&out, "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", []string{"e1g1"})
	assert.ErrorIs(t, err, chess.ErrIllegalDestination)
}

func TestReadMoves(t *testing.T) {
	moves, err := readMoves(strings.NewReader("e2e4 e7e5\n\tg1f3  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3"}, moves)
}
