// Package store is the in-memory registry for all coordination state.
//
// It is a pure storage layer: atomic whole-entity get/put/delete per key,
// no business logic, no implicit expiry. Lookups report absence instead of
// failing so callers own their presence checks. All data is lost on restart.
package store

import (
	"sync"
	"time"

	"mafia-server/internal/game"
)

// Player is one member of a lobby. Role stays empty until assignment,
// except the owner who holds GOD from creation. ConnID is the transport
// connection currently attached to the player, empty while offline.
type Player struct {
	ID        string
	Name      string
	Role      game.Role
	Alive     bool
	Connected bool
	ConnID    string
}

// Lobby is a bounded group of players identified by a shareable code.
// Players are kept in join order and contain no duplicate ids.
type Lobby struct {
	ID         string
	OwnerID    string
	Players    []Player
	MaxPlayers int
	CreatedAt  time.Time
}

// PlayerByID returns the index of the player with the given id, or -1.
func (l Lobby) PlayerByID(playerID string) int {
	for i := range l.Players {
		if l.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Clone returns a copy of l whose player slice does not share backing
// storage with the original.
func (l Lobby) Clone() Lobby {
	out := l
	out.Players = append([]Player(nil), l.Players...)
	return out
}

// PlayerSession is the durable identity record that survives connection
// churn: a secret token anchors the player id, lobby id, remembered
// display name, and whichever connection is current right now.
type PlayerSession struct {
	Token    string
	PlayerID string
	LobbyID  string
	Name     string
	ConnID   string
}

// ConnRef resolves a live transport connection back to its owner.
type ConnRef struct {
	PlayerID string
	LobbyID  string
}

// Store holds every registry behind its own lock. Entities are replaced
// whole on write and copied on read, so no caller ever observes a
// partially-updated value.
type Store struct {
	lobbiesMu sync.RWMutex
	lobbies   map[string]Lobby

	statesMu sync.RWMutex
	states   map[string]game.State // keyed by lobby id

	sessionsMu sync.RWMutex
	byToken    map[string]PlayerSession
	byPlayer   map[string]PlayerSession

	connsMu sync.RWMutex
	conns   map[string]ConnRef // connection id -> owner
}

func New() *Store {
	return &Store{
		lobbies:  make(map[string]Lobby),
		states:   make(map[string]game.State),
		byToken:  make(map[string]PlayerSession),
		byPlayer: make(map[string]PlayerSession),
		conns:    make(map[string]ConnRef),
	}
}

// Lobby operations

func (s *Store) PutLobby(lobby Lobby) {
	clone := lobby.Clone()
	s.lobbiesMu.Lock()
	defer s.lobbiesMu.Unlock()
	s.lobbies[lobby.ID] = clone
}

func (s *Store) GetLobby(lobbyID string) (Lobby, bool) {
	s.lobbiesMu.RLock()
	lobby, ok := s.lobbies[lobbyID]
	s.lobbiesMu.RUnlock()
	if !ok {
		return Lobby{}, false
	}
	return lobby.Clone(), true
}

// DeleteLobby removes a lobby and its game state together; they share a
// lifecycle.
func (s *Store) DeleteLobby(lobbyID string) {
	s.lobbiesMu.Lock()
	delete(s.lobbies, lobbyID)
	s.lobbiesMu.Unlock()

	s.statesMu.Lock()
	delete(s.states, lobbyID)
	s.statesMu.Unlock()
}

func (s *Store) LobbyExists(lobbyID string) bool {
	s.lobbiesMu.RLock()
	defer s.lobbiesMu.RUnlock()
	_, ok := s.lobbies[lobbyID]
	return ok
}

// GameState operations

func (s *Store) PutGameState(state game.State) {
	clone := state.Clone()
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	s.states[state.LobbyID] = clone
}

func (s *Store) GetGameState(lobbyID string) (game.State, bool) {
	s.statesMu.RLock()
	state, ok := s.states[lobbyID]
	s.statesMu.RUnlock()
	if !ok {
		return game.State{}, false
	}
	return state.Clone(), true
}

// Session operations. A session is indexed by token and, secondarily, by
// player id; the two views are updated together.

func (s *Store) PutSession(session PlayerSession) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.byToken[session.Token] = session
	s.byPlayer[session.PlayerID] = session
}

func (s *Store) SessionByToken(token string) (PlayerSession, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	session, ok := s.byToken[token]
	return session, ok
}

func (s *Store) SessionByPlayer(playerID string) (PlayerSession, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	session, ok := s.byPlayer[playerID]
	return session, ok
}

func (s *Store) DeleteSession(token string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	session, ok := s.byToken[token]
	if !ok {
		return
	}
	delete(s.byToken, token)
	delete(s.byPlayer, session.PlayerID)
}

// Connection mapping operations

func (s *Store) PutConn(connID string, ref ConnRef) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[connID] = ref
}

func (s *Store) GetConn(connID string) (ConnRef, bool) {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	ref, ok := s.conns[connID]
	return ref, ok
}

func (s *Store) DeleteConn(connID string) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, connID)
}
