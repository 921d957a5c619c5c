package web

import (
	"net/http"
	"time"

	"github.com/azrachess/azrachess/internal/chess"
)

// GameIndex summarises a session for the game picker.
type GameIndex struct {
	GameID         string              `json:"gameId"`
	Turn           chess.Team          `json:"turn"`
	Phase          chess.Phase         `json:"phase"`
	MoveCount      int                 `json:"moveCount"`
	CreatedAt      time.Time           `json:"createdAt"`
	SpectatorCount int                 `json:"spectatorCount"`
	MaterialCount  chess.MaterialCount `json:"materialCount"`
}

// ListGamesHandler returns every live session, oldest first.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.List()
	games := make([]GameIndex, 0, len(sessions))
	for _, session := range sessions {
		idx := GameIndex{
			GameID:    session.ID,
			CreatedAt: session.CreatedAt,
		}
		_ = session.Do(func(g *chess.Game) error {
			idx.Turn = g.Turn()
			idx.Phase = g.Phase()
			idx.MoveCount = len(g.History())
			idx.MaterialCount = g.Material()
			return nil
		})
		if s.hub != nil {
			idx.SpectatorCount = s.hub.Clients(session.ID)
		}
		games = append(games, idx)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}
