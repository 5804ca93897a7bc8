package server

import (
	"encoding/json"

	"mafia-server/internal/game"
)

// ClientMessage is the inbound websocket frame: a type tag plus a
// type-specific payload.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MessageType discriminates outbound envelopes so receivers can dispatch
// without inspecting destination strings.
type MessageType string

const (
	// Broadcast to the lobby topic.
	MsgPlayerListUpdate MessageType = "PLAYER_LIST_UPDATE"
	MsgPhaseChange      MessageType = "PHASE_CHANGE"
	MsgGameAnnouncement MessageType = "GAME_ANNOUNCEMENT"

	// Unicast to a player queue.
	MsgGameSnapshot MessageType = "GAME_SNAPSHOT"
	MsgRoleAssigned MessageType = "ROLE_ASSIGNED"

	// Direct reply to the sending connection only.
	MsgError MessageType = "ERROR"
)

// Envelope wraps every outbound message.
type Envelope struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// Inbound payloads.

type SubscribeRequest struct {
	Destination string `json:"destination"`
}

type AssignRolesRequest struct {
	RoleCounts map[string]int `json:"roleCounts"`
}

type NextPhaseRequest struct {
	Announcement string `json:"announcement"`
}

type AnnounceRequest struct {
	Message string `json:"message"`
}

// Outbound payloads.

// PlayerInfo is the per-member entry of every membership view. Roles are
// never included here.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Alive     bool   `json:"alive"`
	Connected bool   `json:"connected"`
	IsOwner   bool   `json:"isOwner"`
}

type PlayerListUpdateData struct {
	Players []PlayerInfo `json:"players"`
}

type PhaseChangeData struct {
	Phase        game.Phase `json:"phase"`
	DayCount     int        `json:"dayCount"`
	Announcement string     `json:"announcement"`
}

type AnnouncementData struct {
	Message string `json:"message"`
}

type RoleAssignedData struct {
	PlayerID string    `json:"playerId"`
	Role     game.Role `json:"role"`
	Message  string    `json:"message"`
}

// GameSnapshotData is the full state as visible to one player: global
// phase and membership plus that player's own secrets.
type GameSnapshotData struct {
	LobbyID       string       `json:"lobbyId"`
	Phase         game.Phase   `json:"currentPhase"`
	DayCount      int          `json:"dayCount"`
	YourRole      game.Role    `json:"yourRole,omitempty"`
	Alive         bool         `json:"alive"`
	Players       []PlayerInfo `json:"players"`
	Announcements []string     `json:"announcements"`
}

type ErrorData struct {
	Message string `json:"message"`
}
