package presence

import (
	"sync"
	"time"
)

// DefaultGraceWindow is the delay between a disconnect and the final removal
// of the participant's presence entry.
const DefaultGraceWindow = 30 * time.Second

type reapKey struct {
	roomID        string
	participantID string
}

// Reaper schedules delayed presence removals, one pending task per
// participant per room. Rescheduling replaces the pending task, and a rejoin
// cancels it, so rapid reconnect cycles never accumulate timers. The removal
// decision itself is made by the callback at fire time, never from a
// snapshot captured at schedule time.
type Reaper struct {
	window time.Duration

	mu     sync.Mutex
	timers map[reapKey]*time.Timer
}

// NewReaper creates a reaper with the given grace window. A zero or negative
// window falls back to the default.
func NewReaper(window time.Duration) *Reaper {
	if window <= 0 {
		window = DefaultGraceWindow
	}
	return &Reaper{window: window, timers: make(map[reapKey]*time.Timer)}
}

// Schedule arms a removal check for the participant in the room. Any pending
// task for the same key is replaced.
func (r *Reaper) Schedule(roomID, participantID string, fire func(roomID, participantID string)) {
	key := reapKey{roomID: roomID, participantID: participantID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	r.timers[key] = time.AfterFunc(r.window, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()
		fire(roomID, participantID)
	})
}

// Cancel drops any pending removal for the participant in the room. Safe to
// call when nothing is pending.
func (r *Reaper) Cancel(roomID, participantID string) {
	key := reapKey{roomID: roomID, participantID: participantID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
		delete(r.timers, key)
	}
}

// Stop cancels every pending task. Used on shutdown and in tests.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}
