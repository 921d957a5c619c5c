package web

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/azrachess/azrachess/internal/chess"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("game session not found")

// Session is one engine game driven by the render client. The engine is not
// safe for concurrent use, so every access goes through Do.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu   sync.Mutex
	game *chess.Game
}

// Do runs fn with exclusive access to the session's game.
func (s *Session) Do(fn func(g *chess.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Store keeps the live sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create builds a game under a fresh id and registers it. Nothing is stored
// when newGame fails.
func (st *Store) Create(newGame func(id string) (*chess.Game, error)) (*Session, error) {
	id := uuid.NewString()
	g, err := newGame(id)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		game:      g,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// List returns the sessions, oldest first.
func (st *Store) List() []*Session {
	st.mu.RLock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
