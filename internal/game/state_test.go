package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewState_StartsWaiting(t *testing.T) {
	s := NewState("ABC123")

	assert.Equal(t, "ABC123", s.LobbyID)
	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.Equal(t, 0, s.DayCount)
	assert.Empty(t, s.Announcements)
}

func TestNextPhase_Sequence(t *testing.T) {
	s := NewState("ABC123")

	expected := []Phase{
		PhaseRolesAssigned,
		PhaseNight,
		PhaseDay,
		PhaseNight,
		PhaseDay,
		PhaseNight,
	}

	for _, want := range expected {
		s.NextPhase()
		assert.Equal(t, want, s.Phase)
		assert.True(t, s.Phase.Valid())
	}
}

func TestNextPhase_DayCounter(t *testing.T) {
	s := NewState("ABC123")

	s.NextPhase() // ROLES_ASSIGNED
	assert.Equal(t, 0, s.DayCount)

	s.NextPhase() // first NIGHT
	assert.Equal(t, 1, s.DayCount)

	s.NextPhase() // DAY: never changes the counter
	assert.Equal(t, 1, s.DayCount)

	s.NextPhase() // DAY -> NIGHT increments
	assert.Equal(t, 2, s.DayCount)

	s.NextPhase() // NIGHT -> DAY
	assert.Equal(t, 2, s.DayCount)

	s.NextPhase() // DAY -> NIGHT
	assert.Equal(t, 3, s.DayCount)
}

func TestNextPhase_FinishedIsAbsorbing(t *testing.T) {
	s := NewState("ABC123")
	s.Finish()

	for i := 0; i < 5; i++ {
		s.NextPhase()
		assert.Equal(t, PhaseFinished, s.Phase)
	}
}

func TestFinish_FromAnyPhase(t *testing.T) {
	for _, start := range []Phase{PhaseWaiting, PhaseRolesAssigned, PhaseNight, PhaseDay} {
		s := NewState("ABC123")
		s.Phase = start
		s.Finish()
		assert.Equal(t, PhaseFinished, s.Phase)
	}
}

func TestLatestAnnouncement_DefaultText(t *testing.T) {
	s := NewState("ABC123")

	// No announcements yet: phase-based default.
	assert.Equal(t, "Phase changed to WAITING", s.LatestAnnouncement())

	s.AddAnnouncement("Night falls")
	s.AddAnnouncement("Dawn breaks")
	assert.Equal(t, "Dawn breaks", s.LatestAnnouncement())
	assert.Equal(t, []string{"Night falls", "Dawn breaks"}, s.Announcements)
}

func TestClone_DoesNotShareAnnouncements(t *testing.T) {
	s := NewState("ABC123")
	s.AddAnnouncement("one")

	c := s.Clone()
	c.AddAnnouncement("two")

	assert.Equal(t, []string{"one"}, s.Announcements)
	assert.Equal(t, []string{"one", "two"}, c.Announcements)
}
