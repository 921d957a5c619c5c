package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azrachess/azrachess/internal/chess"
	"github.com/azrachess/azrachess/internal/config"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

type testServer struct {
	service *Service
	hub     *Hub
	router  *mux.Router
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	service := NewService(cfg, hub)
	router := mux.NewRouter()
	service.Routes(router)
	return &testServer{service: service, hub: hub, router: router}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	CORS(ts.router).ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createGame(t *testing.T, fen string) GameState {
	t.Helper()
	var body interface{}
	if fen != "" {
		body = CreateGameRequest{FEN: fen}
	}
	rr := ts.do(t, "POST", "/api/games", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var state GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func square(t *testing.T, name string) chess.Square {
	t.Helper()
	sq, err := chess.ParseSquare(name)
	require.NoError(t, err)
	return sq
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.createGame(t, "")

	rr := ts.do(t, "GET", "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decode[map[string]interface{}](t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["sessions"])
}

func TestCreateGameHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	state := ts.createGame(t, "")

	assert.NotEmpty(t, state.ID)
	assert.Equal(t, startFEN, state.FEN)
	assert.Equal(t, chess.White, state.Turn)
	assert.Equal(t, chess.WaitingForSelection, state.Phase)
	assert.Nil(t, state.Winner)
	assert.Empty(t, state.History)
	assert.Nil(t, state.Selection)
	assert.Equal(t, chess.MaterialCount{White: 39, Black: 39}, state.Material)
	assert.Equal(t, &chess.Cell{Kind: chess.King, Team: chess.White}, state.Board.At(square(t, "e1")))

	other := ts.createGame(t, "")
	assert.NotEqual(t, state.ID, other.ID)
}

func TestCreateGameFromFEN(t *testing.T) {
	ts := newTestServer(t, nil)
	fen := "4k3/8/8/8/8/8/8/4K2R b - - 0 12"
	state := ts.createGame(t, fen)
	assert.Equal(t, fen, state.FEN)
	assert.Equal(t, chess.Black, state.Turn)
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.do(t, "POST", "/api/games", CreateGameRequest{FEN: "8/8/8/8/8/8/8/8 w - - 0 1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest("POST", "/api/games", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 0, ts.service.store.Len())
}

func TestSelectAndMove(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID

	rr := ts.do(t, "POST", "/api/games/"+id+"/select", map[string]string{"square": "e2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	sel := decode[Selection](t, rr)
	assert.Equal(t, square(t, "e2"), sel.Square)
	assert.Equal(t, chess.NoSpecialMove, sel.Special)
	assert.ElementsMatch(t, []chess.Square{square(t, "e3"), square(t, "e4")}, sel.Moves)

	state := decode[GameState](t, ts.do(t, "GET", "/api/games/"+id, nil))
	assert.Equal(t, chess.PieceSelected, state.Phase)
	require.NotNil(t, state.Selection)
	assert.Equal(t, square(t, "e2"), state.Selection.Square)

	rr = ts.do(t, "POST", "/api/games/"+id+"/moves", map[string]string{"to": "e4"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[chess.MoveResult](t, rr)
	assert.True(t, result.Applied)
	assert.Equal(t, chess.Pawn, result.Piece)
	assert.Equal(t, chess.Black, result.Turn)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - e3 0 1", result.FEN)

	state = decode[GameState](t, ts.do(t, "GET", "/api/games/"+id, nil))
	assert.Equal(t, chess.Black, state.Turn)
	assert.Equal(t, chess.WaitingForSelection, state.Phase)
	assert.Equal(t, []chess.MoveRecord{{From: square(t, "e2"), To: square(t, "e4")}}, state.History)
	assert.Nil(t, state.Board.At(square(t, "e2")))
}

func TestMoveWithFrom(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID

	rr := ts.do(t, "POST", "/api/games/"+id+"/moves", map[string]string{"from": "g1", "to": "f3"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[chess.MoveResult](t, rr)
	assert.Equal(t, chess.Knight, result.Piece)
	assert.Equal(t, square(t, "f3"), result.To)
}

func TestErrorStatusCodes(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID
	over := ts.createGame(t, "4k3/4Q3/8/8/8/8/8/4K3 w - - 0 1").ID
	rr := ts.do(t, "POST", "/api/games/"+over+"/moves", map[string]string{"from": "e7", "to": "e8"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[chess.MoveResult](t, rr).Checkmate)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown game", "GET", "/api/games/nope", nil, http.StatusNotFound},
		{"select in unknown game", "POST", "/api/games/nope/select", map[string]string{"square": "e2"}, http.StatusNotFound},
		{"select empty square", "POST", "/api/games/" + id + "/select", map[string]string{"square": "e4"}, http.StatusBadRequest},
		{"select opponent piece", "POST", "/api/games/" + id + "/select", map[string]string{"square": "e7"}, http.StatusConflict},
		{"select piece without moves", "POST", "/api/games/" + id + "/select", map[string]string{"square": "a1"}, http.StatusBadRequest},
		{"select off-board square", "POST", "/api/games/" + id + "/select", map[string]string{"square": "z9"}, http.StatusBadRequest},
		{"move without selection", "POST", "/api/games/" + id + "/moves", map[string]string{"to": "e4"}, http.StatusBadRequest},
		{"illegal destination", "POST", "/api/games/" + id + "/moves", map[string]string{"from": "e2", "to": "e5"}, http.StatusBadRequest},
		{"move after checkmate", "POST", "/api/games/" + over + "/moves", map[string]string{"from": "e1", "to": "e2"}, http.StatusConflict},
		{"delete unknown game", "DELETE", "/api/games/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	state := decode[GameState](t, ts.do(t, "GET", "/api/games/"+id, nil))
	assert.Empty(t, state.History, "rejections never move pieces")
	assert.Equal(t, startFEN, state.FEN)
}

func TestDeselectHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/"+id+"/select", map[string]string{"square": "b1"}).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(t, "DELETE", "/api/games/"+id+"/selection", nil).Code)

	state := decode[GameState](t, ts.do(t, "GET", "/api/games/"+id, nil))
	assert.Nil(t, state.Selection)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/games/"+id+"/moves", map[string]string{"to": "c3"}).Code)
}

func TestRestartHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/"+id+"/moves", map[string]string{"from": "d2", "to": "d4"}).Code)

	rr := ts.do(t, "POST", "/api/games/"+id+"/restart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[GameState](t, rr)
	assert.Equal(t, id, state.ID)
	assert.Equal(t, startFEN, state.FEN)
	assert.Empty(t, state.History)
}

func TestDeleteGameHandler(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "").ID

	assert.Equal(t, http.StatusNoContent, ts.do(t, "DELETE", "/api/games/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/games/"+id, nil).Code)
}

func TestListGamesHandler(t *testing.T) {
	ts := newTestServer(t, nil)

	body := decode[map[string]interface{}](t, ts.do(t, "GET", "/api/games", nil))
	assert.Equal(t, float64(0), body["total"])

	first := ts.createGame(t, "").ID
	second := ts.createGame(t, "4k3/8/8/8/8/8/8/4K2R b - - 0 1").ID
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/games/"+first+"/moves", map[string]string{"from": "e2", "to": "e4"}).Code)

	var list struct {
		Games []GameIndex `json:"games"`
		Total int         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(ts.do(t, "GET", "/api/games", nil).Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)

	byID := map[string]GameIndex{}
	for _, g := range list.Games {
		byID[g.GameID] = g
	}
	assert.Equal(t, 1, byID[first].MoveCount)
	assert.Equal(t, chess.Black, byID[first].Turn)
	assert.Equal(t, 0, byID[second].MoveCount)
	assert.Equal(t, chess.MaterialCount{White: 5, Black: 0}, byID[second].MaterialCount)
	assert.Equal(t, 0, byID[second].SpectatorCount)
}

func TestEngineOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{Engine: config.EngineConfig{CastlingMoves: true, ParallelCheckFilter: true}}
	ts := newTestServer(t, cfg)
	id := ts.createGame(t, "4k3/8/8/8/8/8/8/R3K2R w - - 0 1").ID

	sel := decode[Selection](t, ts.do(t, "POST", "/api/games/"+id+"/select", map[string]string{"square": "e1"}))
	assert.Equal(t, chess.Castling, sel.Special)
	assert.Contains(t, sel.Moves, square(t, "c1"))
	assert.Contains(t, sel.Moves, square(t, "g1"))

	plain := newTestServer(t, nil)
	id = plain.createGame(t, "4k3/8/8/8/8/8/8/R3K2R w - - 0 1").ID
	sel = decode[Selection](t, plain.do(t, "POST", "/api/games/"+id+"/select", map[string]string{"square": "e1"}))
	assert.Equal(t, chess.NoSpecialMove, sel.Special)
	assert.NotContains(t, sel.Moves, square(t, "c1"))
}

// TestCORSHeadersOnPreflightRequests ensures that browsers can call every
// route, including ones that only register POST.
func TestCORSHeadersOnPreflightRequests(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/api/games/some-id/moves", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	w := httptest.NewRecorder()
	CORS(ts.router).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin: *, got %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Expected Access-Control-Allow-Methods to contain POST, got %s", w.Header().Get("Access-Control-Allow-Methods"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Content-Type") {
		t.Errorf("Expected Access-Control-Allow-Headers to contain Content-Type, got %s", w.Header().Get("Access-Control-Allow-Headers"))
	}
}
