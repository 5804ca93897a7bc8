package server

import "errors"

// Error taxonomy. Not-found conditions are surfaced for user-initiated
// actions and swallowed as no-ops on disconnect/cleanup paths; nothing
// here is ever fatal to the process.
var (
	ErrLobbyNotFound   = errors.New("LOBBY_NOT_FOUND: lobby not found")
	ErrLobbyFull       = errors.New("LOBBY_FULL: lobby is full")
	ErrPlayerNotFound  = errors.New("PLAYER_NOT_FOUND: player not found")
	ErrSessionNotFound = errors.New("TOKEN_NOT_FOUND: invalid session token")
	ErrUnauthorized    = errors.New("UNAUTHORIZED: missing or invalid token")
	ErrNotOwner        = errors.New("NOT_OWNER: only the lobby owner can do this")
	ErrNameInvalid     = errors.New("NAME_INVALID: display name must be 1-20 characters")
	ErrNameTaken       = errors.New("NAME_TAKEN: display name already taken")
	ErrBadDestination  = errors.New("BAD_DESTINATION: cannot subscribe to this destination")
)
