package game

// Phase is the current stage of a game's state machine.
type Phase string

const (
	PhaseWaiting       Phase = "WAITING"        // Lobby created, waiting for players
	PhaseRolesAssigned Phase = "ROLES_ASSIGNED" // God has assigned roles, ready to start
	PhaseNight         Phase = "NIGHT"          // Night phase (Mafia acts)
	PhaseDay           Phase = "DAY"            // Day phase (discussion and voting)
	PhaseFinished      Phase = "FINISHED"       // Game ended, absorbing
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseWaiting, PhaseRolesAssigned, PhaseNight, PhaseDay, PhaseFinished:
		return true
	}
	return false
}
