package server

import (
	"strings"
	"sync"

	"github.com/mkraus12/courtside/internal/abbrev"
	"github.com/mkraus12/courtside/internal/models"
)

// Store owns the authoritative scoreboard snapshot. All access goes through
// the mutex; handlers get copies, never the live struct.
type Store struct {
	mu    sync.Mutex
	state models.Scoreboard
}

// NewStore starts from the default snapshot.
func NewStore() *Store {
	return &Store{state: models.Default()}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.Scoreboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mutate runs fn under the lock and returns the resulting snapshot. Used by
// the timer engine and the swap handler.
func (s *Store) Mutate(fn func(*models.Scoreboard)) models.Scoreboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}

// Apply merges an admin update into the state. Only operator-editable fields
// are copied; timer ownership stays with the timer engine. Short codes that
// are not exactly three A-Z letters are re-derived from the team name, and
// blank colors never erase existing ones.
func (s *Store) Apply(update models.Scoreboard) models.Scoreboard {
	update.ResolveLegacy()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	st.HomeName = update.HomeName
	st.HomeLogo = update.HomeLogo
	st.AwayName = update.AwayName
	st.AwayLogo = update.AwayLogo
	st.HomeScore = update.HomeScore
	st.AwayScore = update.AwayScore
	st.HomeFouls = update.HomeFouls
	st.AwayFouls = update.AwayFouls
	st.Theme = update.Theme
	if update.HalfLength > 0 {
		st.HalfLength = update.HalfLength
	}
	if update.QREvery > 0 {
		st.QREvery = update.QREvery
	}
	if update.QRDuration > 0 {
		st.QRDuration = update.QRDuration
	}

	hs := strings.ToUpper(strings.TrimSpace(update.HomeShort))
	as := strings.ToUpper(strings.TrimSpace(update.AwayShort))
	if validShort(hs) {
		st.HomeShort = hs
	} else {
		st.HomeShort = abbrev.Short(st.HomeName)
	}
	if validShort(as) {
		st.AwayShort = as
	} else {
		st.AwayShort = abbrev.Short(st.AwayName)
	}

	if update.PrimaryColor != "" {
		st.PrimaryColor = update.PrimaryColor
	}
	if update.SecondaryColor != "" {
		st.SecondaryColor = update.SecondaryColor
	}

	st.Clamp()
	return s.state
}

// Replace swaps in a whole snapshot (import, slot load), filling defaults
// for records written by older builds: half 1 and derived short codes.
func (s *Store) Replace(state models.Scoreboard) models.Scoreboard {
	state.ResolveLegacy()
	if strings.TrimSpace(state.HomeShort) == "" {
		state.HomeShort = abbrev.Short(state.HomeName)
	}
	if strings.TrimSpace(state.AwayShort) == "" {
		state.AwayShort = abbrev.Short(state.AwayName)
	}
	state.Clamp()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return s.state
}

// validShort reports whether a submitted code is exactly three A-Z letters.
// The '-' padded auto codes intentionally fail this, so a rename re-derives
// them on the next update.
func validShort(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
