package server

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mafia-server/internal/store"
)

// ConnectionEvictor closes a live transport connection, used when a
// player reconnects while an older connection is still attached.
type ConnectionEvictor interface {
	CloseConn(connID string, reason string)
}

// SessionManager owns durable player identity: it mints tokens, maps
// transport connections to players, and reconciles the three
// independently-arriving connection events (open, subscribe, close) with
// lobby membership. State is stored before anything is broadcast.
type SessionManager struct {
	store   *store.Store
	locks   *lobbyLocks
	lobbies *LobbyManager
	engine  *GameEngine
	evictor ConnectionEvictor
}

func NewSessionManager(st *store.Store, locks *lobbyLocks) *SessionManager {
	return &SessionManager{store: st, locks: locks}
}

// wire attaches the collaborators that are built after the manager
// itself. Called once from NewServer.
func (sm *SessionManager) wire(lobbies *LobbyManager, engine *GameEngine, evictor ConnectionEvictor) {
	sm.lobbies = lobbies
	sm.engine = engine
	sm.evictor = evictor
}

// IssueSession mints a new player identity and its secret token and
// registers the session. Tokens are uuid v4 (crypto-rand backed); they
// must be unguessable because they are the only authentication.
func (sm *SessionManager) IssueSession(lobbyID, playerName string) (token, playerID string) {
	token = uuid.New().String()
	playerID = uuid.New().String()

	sm.store.PutSession(store.PlayerSession{
		Token:    token,
		PlayerID: playerID,
		LobbyID:  lobbyID,
		Name:     playerName,
	})

	return token, playerID
}

// Authenticate resolves a token to its session.
func (sm *SessionManager) Authenticate(token string) (store.PlayerSession, bool) {
	if token == "" {
		return store.PlayerSession{}, false
	}
	return sm.store.SessionByToken(token)
}

// OnConnectionOpen associates a new transport connection with the
// session's player. Invalid tokens are rejected before any state
// mutation. A still-live previous connection for the same player is
// evicted: the most recent connection always wins.
func (sm *SessionManager) OnConnectionOpen(token, connID string) error {
	session, ok := sm.Authenticate(token)
	if !ok {
		return ErrUnauthorized
	}

	unlock := sm.locks.acquire(session.LobbyID)

	// The pre-lock lookup is only the fail-fast token check. Re-read
	// under the lock so a session mutation committed in the meantime
	// (a rejoin rename, say) is not clobbered by a stale copy.
	session, ok = sm.store.SessionByToken(token)
	if !ok {
		unlock()
		return ErrUnauthorized
	}

	lobby, ok := sm.store.GetLobby(session.LobbyID)
	if !ok {
		unlock()
		return ErrLobbyNotFound
	}

	oldConnID := session.ConnID

	idx := lobby.PlayerByID(session.PlayerID)
	if idx == -1 {
		// The player object was removed from the lobby (hard-remove
		// residue or explicit removal); re-admit it under the name
		// the session remembers.
		lobby.Players = append(lobby.Players, store.Player{
			ID:    session.PlayerID,
			Name:  session.Name,
			Alive: true,
		})
		idx = len(lobby.Players) - 1
	}
	lobby.Players[idx].Connected = true
	lobby.Players[idx].ConnID = connID
	sm.store.PutLobby(lobby)

	session.ConnID = connID
	sm.store.PutSession(session)

	sm.store.PutConn(connID, store.ConnRef{PlayerID: session.PlayerID, LobbyID: session.LobbyID})
	if oldConnID != "" && oldConnID != connID {
		sm.store.DeleteConn(oldConnID)
	}

	unlock()

	// Transport I/O happens outside the lobby lock.
	if oldConnID != "" && oldConnID != connID && sm.evictor != nil {
		sm.evictor.CloseConn(oldConnID, "connected from another device")
	}

	log.Info().Str("lobby_id", session.LobbyID).Str("player_id", session.PlayerID).
		Str("conn_id", connID).Msg("player connected")

	sm.lobbies.BroadcastPlayerList(session.LobbyID)
	return nil
}

// OnSubscribed fires when a connection subscribes to a destination.
// Subscribing to the private player queue, not connecting, is what
// triggers the initial snapshot: unicast delivery before subscription
// would be dropped by the transport. A connection already torn down, or
// whose lobby has since been deleted, is skipped silently.
func (sm *SessionManager) OnSubscribed(connID string, destinationKind DestinationKind) {
	if destinationKind != DestinationPlayerQueue {
		return
	}

	ref, ok := sm.store.GetConn(connID)
	if !ok {
		// Close raced ahead of subscribe; nothing to deliver.
		return
	}

	snap, err := sm.engine.Snapshot(ref.LobbyID, ref.PlayerID)
	if err != nil {
		log.Debug().Str("conn_id", connID).Err(err).Msg("skipping snapshot for torn-down session")
		return
	}

	sm.engine.notifier.SendToPlayer(ref.PlayerID, MsgGameSnapshot, snap)
	log.Info().Str("lobby_id", ref.LobbyID).Str("player_id", ref.PlayerID).
		Msg("sent game snapshot on subscribe")
}

// OnConnectionClose marks the owning player disconnected and clears the
// connection mapping. Unknown or already-cleaned-up connection ids are a
// no-op, and a close for a connection that a reconnect has already
// superseded only removes the stale mapping. The player keeps its lobby
// seat indefinitely (soft-disconnect policy).
func (sm *SessionManager) OnConnectionClose(connID string) {
	ref, ok := sm.store.GetConn(connID)
	if !ok {
		return
	}
	sm.store.DeleteConn(connID)

	unlock := sm.locks.acquire(ref.LobbyID)

	session, ok := sm.store.SessionByPlayer(ref.PlayerID)
	if !ok || session.ConnID != connID {
		// A newer connection owns this player now.
		unlock()
		return
	}

	session.ConnID = ""
	sm.store.PutSession(session)

	lobby, ok := sm.store.GetLobby(ref.LobbyID)
	if ok {
		if idx := lobby.PlayerByID(ref.PlayerID); idx != -1 {
			lobby.Players[idx].Connected = false
			lobby.Players[idx].ConnID = ""
			sm.store.PutLobby(lobby)
		}
	}

	unlock()

	log.Info().Str("lobby_id", ref.LobbyID).Str("player_id", ref.PlayerID).
		Str("conn_id", connID).Msg("player disconnected")

	if ok {
		sm.lobbies.BroadcastPlayerList(ref.LobbyID)
	}
}

// DestinationKind classifies what a connection subscribed to.
type DestinationKind string

const (
	DestinationPlayerQueue DestinationKind = "player"
	DestinationLobbyTopic  DestinationKind = "lobby"
)
