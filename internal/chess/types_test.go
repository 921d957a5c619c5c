package chess

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in      string
		want    Square
		wantErr bool
	}{
		{in: "a1", want: Square{File: 0, Rank: 0}},
		{in: "h8", want: Square{File: 7, Rank: 7}},
		{in: "e4", want: Square{File: 4, Rank: 3}},
		{in: "i1", wantErr: true},
		{in: "a9", wantErr: true},
		{in: "a0", wantErr: true},
		{in: "E4", wantErr: true},
		{in: "e", wantErr: true},
		{in: "e44", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSquare(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOffBoard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestSquareStringOffBoard(t *testing.T) {
	assert.Equal(t, "-", Square{File: 8, Rank: 0}.String())
	_, err := Square{File: -1, Rank: 0}.MarshalText()
	assert.ErrorIs(t, err, ErrOffBoard)
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("g1f3")
	require.NoError(t, err)
	assert.Equal(t, MoveRecord{From: sq("g1"), To: sq("f3")}, m)
	assert.Equal(t, "g1f3", m.String())

	for _, bad := range []string{"", "e2e", "e2e4q", "z2e4", "e2e9"} {
		_, err := ParseMove(bad)
		assert.Error(t, err, bad)
	}
}

func TestTextEncodings(t *testing.T) {
	data, err := json.Marshal(struct {
		Team    Team        `json:"team"`
		Kind    PieceKind   `json:"kind"`
		Square  Square      `json:"square"`
		Special SpecialMove `json:"special"`
		Phase   Phase       `json:"phase"`
	}{Black, Knight, sq("c6"), EnPassant, PieceSelected})
	require.NoError(t, err)
	assert.JSONEq(t, `{"team":"black","kind":"knight","square":"c6","special":"en_passant","phase":"piece_selected"}`, string(data))

	var decoded struct {
		Team    Team        `json:"team"`
		Kind    PieceKind   `json:"kind"`
		Square  Square      `json:"square"`
		Special SpecialMove `json:"special"`
		Phase   Phase       `json:"phase"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Black, decoded.Team)
	assert.Equal(t, Knight, decoded.Kind)
	assert.Equal(t, sq("c6"), decoded.Square)
	assert.Equal(t, EnPassant, decoded.Special)
	assert.Equal(t, PieceSelected, decoded.Phase)

	assert.Error(t, json.Unmarshal([]byte(`{"team":"green"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"wizard"}`), &decoded))
}

func TestSnapshotString(t *testing.T) {
	want := "8 rnbqkbnr\n" +
		"7 pppppppp\n" +
		"6 ........\n" +
		"5 ........\n" +
		"4 ........\n" +
		"3 ........\n" +
		"2 PPPPPPPP\n" +
		"1 RNBQKBNR\n" +
		"  abcdefgh\n"
	assert.Equal(t, want, NewGame().Board().String())
}
