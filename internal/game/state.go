package game

import "fmt"

// State holds the per-lobby game progression: current phase, day counter
// and the append-only announcement log (most recent last).
type State struct {
	LobbyID       string
	Phase         Phase
	DayCount      int
	Announcements []string
}

func NewState(lobbyID string) State {
	return State{
		LobbyID: lobbyID,
		Phase:   PhaseWaiting,
	}
}

// NextPhase advances the state machine one step:
//
//	WAITING -> ROLES_ASSIGNED -> NIGHT -> DAY -> NIGHT -> ...
//
// The first transition into NIGHT sets DayCount to 1; each DAY -> NIGHT
// transition increments it. FINISHED is absorbing: the call is accepted
// but changes nothing.
func (s *State) NextPhase() {
	switch s.Phase {
	case PhaseWaiting:
		s.Phase = PhaseRolesAssigned
	case PhaseRolesAssigned:
		s.Phase = PhaseNight
		s.DayCount = 1
	case PhaseNight:
		s.Phase = PhaseDay
	case PhaseDay:
		s.Phase = PhaseNight
		s.DayCount++
	case PhaseFinished:
		// Stay finished.
	}
}

// Finish moves the game to its terminal phase from wherever it is.
func (s *State) Finish() {
	s.Phase = PhaseFinished
}

func (s *State) AddAnnouncement(message string) {
	s.Announcements = append(s.Announcements, message)
}

// LatestAnnouncement returns the most recent announcement, or a default
// text describing the current phase when none has been made yet.
func (s *State) LatestAnnouncement() string {
	if len(s.Announcements) == 0 {
		return fmt.Sprintf("Phase changed to %s", s.Phase)
	}
	return s.Announcements[len(s.Announcements)-1]
}

// Clone returns a copy of s whose announcement log does not share
// backing storage with the original.
func (s State) Clone() State {
	out := s
	out.Announcements = append([]string(nil), s.Announcements...)
	return out
}
