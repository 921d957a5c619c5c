package chess

// PieceValues holds the standard material value of each kind. Kings count 0.
var PieceValues = [...]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0,
}

// MaterialCount is the material left on the board for each team.
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Balance is White's material minus Black's.
func (m MaterialCount) Balance() int {
	return m.White - m.Black
}

// Material sums piece values over the board.
func (b *Board) Material() MaterialCount {
	var m MaterialCount
	for _, p := range b.Pieces(White) {
		m.White += value(p.Kind)
	}
	for _, p := range b.Pieces(Black) {
		m.Black += value(p.Kind)
	}
	return m
}

func value(k PieceKind) int {
	if k < 0 || int(k) >= len(PieceValues) {
		return 0
	}
	return PieceValues[k]
}

// Material returns the material on the current board.
func (g *Game) Material() MaterialCount {
	return g.board.Material()
}
