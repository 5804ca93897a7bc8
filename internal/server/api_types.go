package server

// Request/response types for the REST surface.

type CreateLobbyRequest struct {
	GodName string `json:"godName"`
}

type JoinLobbyRequest struct {
	LobbyID    string `json:"lobbyId"`
	PlayerName string `json:"playerName"`
	// When present and valid for this lobby, the join is treated as a
	// reconnect/profile update instead of a new membership.
	Token string `json:"token,omitempty"`
}

// LobbyResponse is returned by create/join/info. Token and PlayerID are
// only populated on create/join; the info view never carries them. Roles
// never appear in any of these.
type LobbyResponse struct {
	LobbyID  string       `json:"lobbyId"`
	OwnerID  string       `json:"ownerId"`
	Token    string       `json:"token,omitempty"`
	PlayerID string       `json:"playerId,omitempty"`
	Members  []PlayerInfo `json:"members"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
