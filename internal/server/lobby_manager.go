package server

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mafia-server/internal/game"
	"mafia-server/internal/store"
)

// LobbyManager owns membership: create, join, reconnect-rejoin, remove,
// the read-only info view, and the full-membership broadcast that follows
// every membership change.
type LobbyManager struct {
	store      *store.Store
	sessions   *SessionManager
	notifier   *Notifier
	locks      *lobbyLocks
	maxPlayers int
}

func NewLobbyManager(st *store.Store, sessions *SessionManager, notifier *Notifier, locks *lobbyLocks, maxPlayers int) *LobbyManager {
	return &LobbyManager{
		store:      st,
		sessions:   sessions,
		notifier:   notifier,
		locks:      locks,
		maxPlayers: maxPlayers,
	}
}

// CreateLobby allocates a lobby with the founder as its God/owner. The
// lobby, its game state and the founder's session are all stored before
// the response is returned; the lobby is published to the store last so
// it is never observable half-created.
func (lm *LobbyManager) CreateLobby(founderName string) (LobbyResponse, error) {
	founderName = strings.TrimSpace(founderName)
	if err := validatePlayerName(founderName); err != nil {
		return LobbyResponse{}, err
	}

	lobbyID := GenerateLobbyCode(lm.store.LobbyExists)
	token, playerID := lm.sessions.IssueSession(lobbyID, founderName)

	lm.store.PutGameState(game.NewState(lobbyID))

	lobby := store.Lobby{
		ID:         lobbyID,
		OwnerID:    playerID,
		MaxPlayers: lm.maxPlayers,
		CreatedAt:  time.Now(),
		Players: []store.Player{{
			ID:    playerID,
			Name:  founderName,
			Role:  game.RoleGod,
			Alive: true,
		}},
	}
	lm.store.PutLobby(lobby)

	log.Info().Str("lobby_id", lobbyID).Str("owner_id", playerID).Msg("lobby created")

	resp := lm.lobbyResponse(lobby)
	resp.Token = token
	resp.PlayerID = playerID
	return resp, nil
}

// JoinLobby appends a new member, or treats the call as a
// reconnect/profile-update when the supplied token already belongs to
// this lobby. A membership broadcast follows either path that changed
// state.
func (lm *LobbyManager) JoinLobby(lobbyID, playerName, token string) (LobbyResponse, error) {
	lobbyID = NormalizeLobbyCode(lobbyID)
	playerName = strings.TrimSpace(playerName)

	if token != "" {
		if session, ok := lm.sessions.Authenticate(token); ok && session.LobbyID == lobbyID {
			return lm.rejoin(session, playerName)
		}
		// Unknown or foreign token: fall through to a fresh join, the
		// same way the original treats a stale token.
	}

	if err := validatePlayerName(playerName); err != nil {
		return LobbyResponse{}, err
	}

	unlock := lm.locks.acquire(lobbyID)

	lobby, ok := lm.store.GetLobby(lobbyID)
	if !ok {
		unlock()
		return LobbyResponse{}, ErrLobbyNotFound
	}
	if len(lobby.Players) >= lobby.MaxPlayers {
		unlock()
		return LobbyResponse{}, ErrLobbyFull
	}
	for _, p := range lobby.Players {
		if p.Name == playerName {
			unlock()
			return LobbyResponse{}, ErrNameTaken
		}
	}

	newToken, playerID := lm.sessions.IssueSession(lobbyID, playerName)
	lobby.Players = append(lobby.Players, store.Player{
		ID:    playerID,
		Name:  playerName,
		Alive: true,
	})
	lm.store.PutLobby(lobby)
	resp := lm.lobbyResponse(lobby)

	unlock()

	log.Info().Str("lobby_id", lobbyID).Str("player_id", playerID).
		Str("name", playerName).Msg("player joined")

	lm.BroadcastPlayerList(lobbyID)

	resp.Token = newToken
	resp.PlayerID = playerID
	return resp, nil
}

// rejoin handles joinLobby with a token valid for this lobby: no new
// membership, optionally a rename propagated to lobby and session.
func (lm *LobbyManager) rejoin(session store.PlayerSession, playerName string) (LobbyResponse, error) {
	unlock := lm.locks.acquire(session.LobbyID)

	// Re-read the session under the lock; the caller's copy predates it
	// and may miss a ConnID set by a concurrent connect.
	session, ok := lm.store.SessionByToken(session.Token)
	if !ok {
		unlock()
		return LobbyResponse{}, ErrSessionNotFound
	}

	lobby, ok := lm.store.GetLobby(session.LobbyID)
	if !ok {
		unlock()
		return LobbyResponse{}, ErrLobbyNotFound
	}

	renamed := false
	if playerName != "" && playerName != session.Name {
		if err := validatePlayerName(playerName); err != nil {
			unlock()
			return LobbyResponse{}, err
		}
		if idx := lobby.PlayerByID(session.PlayerID); idx != -1 {
			lobby.Players[idx].Name = playerName
			lm.store.PutLobby(lobby)
		}
		session.Name = playerName
		lm.store.PutSession(session)
		renamed = true
	}
	resp := lm.lobbyResponse(lobby)

	unlock()

	if renamed {
		lm.BroadcastPlayerList(session.LobbyID)
	}

	resp.Token = session.Token
	resp.PlayerID = session.PlayerID
	return resp, nil
}

// RemovePlayer drops a member and its session. Absent lobby or player is
// a no-op, and the owner can never be removed, by disconnect or
// otherwise.
func (lm *LobbyManager) RemovePlayer(lobbyID, playerID string) {
	unlock := lm.locks.acquire(lobbyID)

	lobby, ok := lm.store.GetLobby(lobbyID)
	if !ok || playerID == lobby.OwnerID {
		unlock()
		return
	}
	idx := lobby.PlayerByID(playerID)
	if idx == -1 {
		unlock()
		return
	}

	lobby.Players = append(lobby.Players[:idx], lobby.Players[idx+1:]...)
	lm.store.PutLobby(lobby)

	if session, ok := lm.store.SessionByPlayer(playerID); ok {
		if session.ConnID != "" {
			lm.store.DeleteConn(session.ConnID)
		}
		lm.store.DeleteSession(session.Token)
	}

	unlock()

	log.Info().Str("lobby_id", lobbyID).Str("player_id", playerID).Msg("player removed")
	lm.BroadcastPlayerList(lobbyID)
}

// GetLobbyInfo returns the read-only lobby view. It never includes roles
// or tokens.
func (lm *LobbyManager) GetLobbyInfo(lobbyID string) (LobbyResponse, error) {
	lobby, ok := lm.store.GetLobby(NormalizeLobbyCode(lobbyID))
	if !ok {
		return LobbyResponse{}, ErrLobbyNotFound
	}
	return lm.lobbyResponse(lobby), nil
}

// BroadcastPlayerList sends the full current membership list to the
// lobby topic. Always the whole list, never a diff.
func (lm *LobbyManager) BroadcastPlayerList(lobbyID string) {
	lobby, ok := lm.store.GetLobby(lobbyID)
	if !ok {
		return
	}
	lm.notifier.BroadcastToLobby(lobbyID, MsgPlayerListUpdate, PlayerListUpdateData{
		Players: memberViews(lobby),
	})
}

func (lm *LobbyManager) lobbyResponse(lobby store.Lobby) LobbyResponse {
	return LobbyResponse{
		LobbyID: lobby.ID,
		OwnerID: lobby.OwnerID,
		Members: memberViews(lobby),
	}
}

func memberViews(lobby store.Lobby) []PlayerInfo {
	views := make([]PlayerInfo, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		views = append(views, PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			Alive:     p.Alive,
			Connected: p.Connected,
			IsOwner:   p.ID == lobby.OwnerID,
		})
	}
	return views
}

func validatePlayerName(name string) error {
	if name == "" || len(name) > 20 {
		return ErrNameInvalid
	}
	return nil
}
