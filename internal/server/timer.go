package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mkraus12/courtside/internal/models"
)

// tickInterval keeps perceived start latency low while only broadcasting
// when the displayed second actually changes.
const tickInterval = 200 * time.Millisecond

// Engine drives the match clock. It is the only writer of the snapshot's
// timer fields (timer, running, half, sidesFlipped on second-half starts).
type Engine struct {
	store  *Store
	clock  clockwork.Clock
	notify func(models.Scoreboard)

	mu      sync.Mutex
	anchor  time.Time // clock.Now() minus elapsed, valid while running
	elapsed int       // seconds, authoritative while paused
}

// NewEngine wires the timer to a store. notify is called with the snapshot
// after every visible change; pass the hub broadcast.
func NewEngine(store *Store, clock clockwork.Clock, notify func(models.Scoreboard)) *Engine {
	if notify == nil {
		notify = func(models.Scoreboard) {}
	}
	return &Engine{store: store, clock: clock, notify: notify}
}

// Run ticks the clock until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := e.clock.NewTicker(tickInterval)
	defer ticker.Stop()
	lastSecond := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if snap, changed := e.tick(&lastSecond); changed {
				e.notify(snap)
			}
		}
	}
}

// tick advances the displayed time when running. Returns the snapshot and
// whether it changed.
func (e *Engine) tick(lastSecond *int) (models.Scoreboard, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.store.Snapshot()
	if !state.Running {
		*lastSecond = -1
		return state, false
	}

	sec := int(e.clock.Now().Sub(e.anchor).Seconds())
	if sec < 0 {
		sec = 0
	}
	maxSeconds := state.HalfLength * 60
	if state.Half >= 2 {
		maxSeconds = state.HalfLength * 120
	}
	stop := false
	if sec >= maxSeconds {
		sec = maxSeconds
		stop = true
	}
	if sec == *lastSecond && !stop {
		return state, false
	}
	*lastSecond = sec
	e.elapsed = sec

	snap := e.store.Mutate(func(st *models.Scoreboard) {
		st.Timer = formatTimer(sec)
		if stop {
			st.Running = false
		}
	})
	return snap, true
}

// Start begins (or resumes) the clock from the currently displayed time.
func (e *Engine) Start() models.Scoreboard {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.store.Snapshot()
	if state.Timer != "" {
		e.elapsed = ParseTimer(state.Timer)
	}
	e.anchor = e.clock.Now().Add(-time.Duration(e.elapsed) * time.Second)

	snap := e.store.Mutate(func(st *models.Scoreboard) {
		if st.Half <= 0 {
			st.Half = 1
		}
		st.Running = true
		st.Timer = formatTimer(e.elapsed)
	})
	e.notify(snap)
	return snap
}

// Pause freezes the clock at the elapsed time.
func (e *Engine) Pause() models.Scoreboard {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.store.Snapshot()
	if state.Running {
		sec := int(e.clock.Now().Sub(e.anchor).Seconds())
		if sec < 0 {
			sec = 0
		}
		e.elapsed = sec
	}
	snap := e.store.Mutate(func(st *models.Scoreboard) {
		st.Running = false
		st.Timer = formatTimer(e.elapsed)
	})
	e.notify(snap)
	return snap
}

// Reset stops the clock and returns to 00:00, first half.
func (e *Engine) Reset() models.Scoreboard {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.elapsed = 0
	e.anchor = time.Time{}
	snap := e.store.Mutate(func(st *models.Scoreboard) {
		st.Running = false
		st.Timer = "00:00"
		st.Half = 1
	})
	e.notify(snap)
	return snap
}

// SecondHalf flips the displayed sides, moves to half two and resumes the
// clock from the end of the first half.
func (e *Engine) SecondHalf() models.Scoreboard {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.store.Snapshot()
	if e.elapsed < state.HalfLength*60 {
		e.elapsed = state.HalfLength * 60
	}
	e.anchor = e.clock.Now().Add(-time.Duration(e.elapsed) * time.Second)

	snap := e.store.Mutate(func(st *models.Scoreboard) {
		st.SidesFlipped = !st.SidesFlipped
		st.Half = 2
		st.Running = true
		st.Timer = formatTimer(e.elapsed)
	})
	e.notify(snap)
	return snap
}

// Resync re-anchors the engine after a full snapshot replacement (import or
// slot load), continuing from the imported time if it was running.
func (e *Engine) Resync() {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.store.Snapshot()
	e.elapsed = ParseTimer(state.Timer)
	if state.Running {
		e.anchor = e.clock.Now().Add(-time.Duration(e.elapsed) * time.Second)
	} else {
		e.anchor = time.Time{}
	}
}

// ParseTimer reads an "MM:SS" display value; anything malformed is zero.
func ParseTimer(timer string) int {
	parts := strings.Split(timer, ":")
	if len(parts) != 2 {
		return 0
	}
	m, err1 := strconv.Atoi(parts[0])
	s, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || m < 0 || s < 0 || s >= 60 {
		return 0
	}
	return m*60 + s
}

func formatTimer(sec int) string {
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
