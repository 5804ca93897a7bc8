package server

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"mafia-server/internal/game"
	"mafia-server/internal/store"
)

// GameEngine drives the phase state machine and role distribution. All
// mutations for one lobby run under that lobby's mutex, so two
// concurrent next-phase calls can never double-advance and role
// assignment never interleaves with a phase change. Notifications go out
// after the state is stored, outside the lock.
type GameEngine struct {
	store    *store.Store
	notifier *Notifier
	locks    *lobbyLocks
}

func NewGameEngine(st *store.Store, notifier *Notifier, locks *lobbyLocks) *GameEngine {
	return &GameEngine{store: st, notifier: notifier, locks: locks}
}

// AssignRoles builds a role pool from the requested counts, shuffles it,
// and assigns pool[i] to member[i] in join order. The pool size must
// exactly equal the current membership. Each player learns only its own
// role, on its private queue; the shared topic sees only the phase
// change.
func (ge *GameEngine) AssignRoles(lobbyID string, roleCounts map[game.Role]int) error {
	unlock := ge.locks.acquire(lobbyID)

	lobby, ok := ge.store.GetLobby(lobbyID)
	if !ok {
		unlock()
		return ErrLobbyNotFound
	}
	state, ok := ge.store.GetGameState(lobbyID)
	if !ok {
		unlock()
		return ErrLobbyNotFound
	}

	pool, err := game.ShuffledPool(roleCounts, len(lobby.Players))
	if err != nil {
		unlock()
		return err
	}

	assignments := make([]RoleAssignedData, len(lobby.Players))
	for i := range lobby.Players {
		lobby.Players[i].Role = pool[i]
		assignments[i] = RoleAssignedData{
			PlayerID: lobby.Players[i].ID,
			Role:     pool[i],
			Message:  fmt.Sprintf("You have been assigned the role: %s", pool[i]),
		}
	}
	state.Phase = game.PhaseRolesAssigned

	ge.store.PutLobby(lobby)
	ge.store.PutGameState(state)
	phasePayload := phaseChangeData(state)

	unlock()

	log.Info().Str("lobby_id", lobbyID).Int("players", len(assignments)).Msg("roles assigned")

	for _, a := range assignments {
		ge.notifier.SendToPlayer(a.PlayerID, MsgRoleAssigned, a)
	}
	ge.notifier.BroadcastToLobby(lobbyID, MsgPhaseChange, phasePayload)
	return nil
}

// NextPhase advances the lobby's phase. Calls on a FINISHED game are
// accepted and change nothing. A non-empty announcement is appended to
// the log before the broadcast.
func (ge *GameEngine) NextPhase(lobbyID, announcement string) error {
	return ge.advance(lobbyID, announcement, func(s *game.State) { s.NextPhase() })
}

// FinishGame jumps the lobby to the terminal phase from wherever it is.
func (ge *GameEngine) FinishGame(lobbyID, announcement string) error {
	return ge.advance(lobbyID, announcement, func(s *game.State) { s.Finish() })
}

func (ge *GameEngine) advance(lobbyID, announcement string, step func(*game.State)) error {
	unlock := ge.locks.acquire(lobbyID)

	state, ok := ge.store.GetGameState(lobbyID)
	if !ok {
		unlock()
		return ErrLobbyNotFound
	}

	step(&state)
	if announcement != "" {
		state.AddAnnouncement(announcement)
	}
	ge.store.PutGameState(state)
	payload := phaseChangeData(state)

	unlock()

	log.Info().Str("lobby_id", lobbyID).Str("phase", string(payload.Phase)).
		Int("day", payload.DayCount).Msg("phase advanced")

	ge.notifier.BroadcastToLobby(lobbyID, MsgPhaseChange, payload)
	return nil
}

// Announce appends a God announcement without touching the phase and
// broadcasts it on the shared topic.
func (ge *GameEngine) Announce(lobbyID, message string) error {
	if message == "" {
		return nil
	}

	unlock := ge.locks.acquire(lobbyID)

	state, ok := ge.store.GetGameState(lobbyID)
	if !ok {
		unlock()
		return ErrLobbyNotFound
	}
	state.AddAnnouncement(message)
	ge.store.PutGameState(state)

	unlock()

	ge.notifier.BroadcastToLobby(lobbyID, MsgGameAnnouncement, AnnouncementData{Message: message})
	return nil
}

// Snapshot assembles the full game state as visible to one player: the
// global phase and membership plus that player's own role and alive
// flag. This is the payload delivered when the player subscribes to its
// queue. The lobby lock covers both reads so the snapshot can never pair
// assigned roles with a pre-assignment phase.
func (ge *GameEngine) Snapshot(lobbyID, playerID string) (GameSnapshotData, error) {
	unlock := ge.locks.acquire(lobbyID)
	defer unlock()

	lobby, ok := ge.store.GetLobby(lobbyID)
	if !ok {
		return GameSnapshotData{}, ErrLobbyNotFound
	}
	state, ok := ge.store.GetGameState(lobbyID)
	if !ok {
		return GameSnapshotData{}, ErrLobbyNotFound
	}
	idx := lobby.PlayerByID(playerID)
	if idx == -1 {
		return GameSnapshotData{}, ErrPlayerNotFound
	}

	return GameSnapshotData{
		LobbyID:       lobby.ID,
		Phase:         state.Phase,
		DayCount:      state.DayCount,
		YourRole:      lobby.Players[idx].Role,
		Alive:         lobby.Players[idx].Alive,
		Players:       memberViews(lobby),
		Announcements: state.Announcements,
	}, nil
}

func phaseChangeData(state game.State) PhaseChangeData {
	return PhaseChangeData{
		Phase:        state.Phase,
		DayCount:     state.DayCount,
		Announcement: state.LatestAnnouncement(),
	}
}
