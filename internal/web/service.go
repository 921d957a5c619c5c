package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/azrachess/azrachess/internal/chess"
	"github.com/azrachess/azrachess/internal/config"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Service struct {
	store  *Store
	hub    *Hub
	config *config.Config
}

func NewService(cfg *config.Config, hub *Hub) *Service {
	return &Service{
		store:  NewStore(),
		hub:    hub,
		config: cfg,
	}
}

// Routes registers the API on r.
func (s *Service) Routes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.DeleteGameHandler).Methods("DELETE")
	api.HandleFunc("/games/{id}/select", s.SelectHandler).Methods("POST")
	api.HandleFunc("/games/{id}/selection", s.DeselectHandler).Methods("DELETE")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/restart", s.RestartHandler).Methods("POST")
	api.HandleFunc("/games/{id}/ws", s.WebSocketHandler)
}

// gameOptions builds the engine options for a new game in session id.
func (s *Service) gameOptions(id string) []chess.Option {
	opts := []chess.Option{
		chess.WithLogger(log.Logger.With().Str("gameID", id).Logger()),
	}
	if s.config != nil && s.config.Engine.CastlingMoves {
		opts = append(opts, chess.WithCastlingMoves())
	}
	if s.config != nil && s.config.Engine.ParallelCheckFilter {
		opts = append(opts, chess.WithParallelCheckFilter())
	}
	return opts
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// Captured lists the kinds each team has taken.
type Captured struct {
	White []chess.PieceKind `json:"white"`
	Black []chess.PieceKind `json:"black"`
}

// Selection is the currently selected piece and where it may go.
type Selection struct {
	Square  chess.Square      `json:"square"`
	Special chess.SpecialMove `json:"special"`
	Moves   []chess.Square    `json:"moves"`
}

// GameState is everything the render client needs to draw a session.
type GameState struct {
	ID        string              `json:"id"`
	Board     chess.Snapshot      `json:"board"`
	Turn      chess.Team          `json:"turn"`
	Phase     chess.Phase         `json:"phase"`
	Winner    *chess.Team         `json:"winner,omitempty"`
	Check     bool                `json:"check"`
	FEN       string              `json:"fen"`
	History   []chess.MoveRecord  `json:"history"`
	Captured  Captured            `json:"captured"`
	Material  chess.MaterialCount `json:"material"`
	Selection *Selection          `json:"selection,omitempty"`
}

func stateOf(id string, g *chess.Game) GameState {
	st := GameState{
		ID:       id,
		Board:    g.Board(),
		Turn:     g.Turn(),
		Phase:    g.Phase(),
		FEN:      g.FEN(),
		History:  g.History(),
		Captured: Captured{White: g.Captured(chess.White), Black: g.Captured(chess.Black)},
		Material: g.Material(),
	}
	if winner, over := g.Winner(); over {
		st.Winner = &winner
	} else {
		st.Check = g.InCheck()
	}
	if sq, special, ok := g.Selection(); ok {
		st.Selection = &Selection{Square: sq, Special: special, Moves: g.LegalMoves()}
	}
	return st
}

type CreateGameRequest struct {
	FEN string `json:"fen,omitempty"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	// An empty body starts from the standard position.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := s.store.Create(func(id string) (*chess.Game, error) {
		if req.FEN == "" {
			return chess.NewGame(s.gameOptions(id)...), nil
		}
		return chess.NewGameFromFEN(req.FEN, s.gameOptions(id)...)
	})
	if err != nil {
		log.Error().Err(err).Str("fen", req.FEN).Msg("Invalid FEN")
		http.Error(w, fmt.Sprintf("Invalid FEN: %s", err.Error()), http.StatusBadRequest)
		return
	}

	var state GameState
	_ = session.Do(func(g *chess.Game) error {
		state = stateOf(session.ID, g)
		return nil
	})

	log.Info().Str("gameID", session.ID).Str("fen", state.FEN).Msg("Game created")
	writeJSON(w, http.StatusCreated, state)
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var state GameState
	_ = session.Do(func(g *chess.Game) error {
		state = stateOf(session.ID, g)
		return nil
	})
	writeJSON(w, http.StatusOK, state)
}

func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("gameID", id).Msg("Game deleted")
	w.WriteHeader(http.StatusNoContent)
}

type SelectRequest struct {
	Square chess.Square `json:"square"`
}

func (s *Service) SelectHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var sel Selection
	err := session.Do(func(g *chess.Game) error {
		moves, err := g.SelectPiece(req.Square)
		if err != nil {
			return err
		}
		_, special, _ := g.Selection()
		sel = Selection{Square: req.Square, Special: special, Moves: moves}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("gameID", session.ID).Str("square", req.Square.String()).Msg("Selection rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Service) DeselectHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	_ = session.Do(func(g *chess.Game) error {
		g.Deselect()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// MakeMoveRequest moves the selected piece to To. When From is set the piece
// on From is selected first.
type MakeMoveRequest struct {
	From *chess.Square `json:"from,omitempty"`
	To   chess.Square  `json:"to"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		moveResult chess.MoveResult
		state      GameState
	)
	err := session.Do(func(g *chess.Game) error {
		var err error
		if req.From != nil {
			moveResult, err = g.Move(*req.From, req.To)
		} else {
			moveResult, err = g.ApplyMove(req.To)
		}
		if err != nil {
			return err
		}
		state = stateOf(session.ID, g)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("gameID", session.ID).Str("to", req.To.String()).Msg("Move rejected")
		writeError(w, err)
		return
	}

	log.Info().
		Str("gameID", session.ID).
		Str("from", moveResult.From.String()).
		Str("to", moveResult.To.String()).
		Str("special", moveResult.Special.String()).
		Bool("check", moveResult.Check).
		Bool("checkmate", moveResult.Checkmate).
		Msg("Move executed successfully")

	s.broadcast(session.ID, "move", state)
	writeJSON(w, http.StatusOK, moveResult)
}

func (s *Service) RestartHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var state GameState
	_ = session.Do(func(g *chess.Game) error {
		g.Restart()
		state = stateOf(session.ID, g)
		return nil
	})

	log.Info().Str("gameID", session.ID).Msg("Game restarted")
	s.broadcast(session.ID, "restart", state)
	writeJSON(w, http.StatusOK, state)
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Missing game ID", http.StatusBadRequest)
		return nil, false
	}
	session, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return session, true
}

func (s *Service) broadcast(id, kind string, state GameState) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastGameUpdate(GameUpdate{GameID: id, Type: kind, Data: state})
}

// statusFor maps engine and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chess.ErrNotYourTurn), errors.Is(err, chess.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
