package presence

import (
	"sync"
	"testing"
	"time"
)

type fireRecorder struct {
	mu    sync.Mutex
	fires []string
}

func (f *fireRecorder) fire(roomID, participantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fires = append(f.fires, roomID+"/"+participantID)
}

func (f *fireRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fires)
}

func TestReaperFiresAfterWindow(t *testing.T) {
	r := NewReaper(10 * time.Millisecond)
	defer r.Stop()
	rec := &fireRecorder{}

	r.Schedule("lobby", "u1", rec.fire)

	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected exactly one fire, got %d", rec.count())
	}
}

func TestReaperCancelPreventsFire(t *testing.T) {
	r := NewReaper(20 * time.Millisecond)
	defer r.Stop()
	rec := &fireRecorder{}

	r.Schedule("lobby", "u1", rec.fire)
	r.Cancel("lobby", "u1")

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("expected no fire after cancel, got %d", rec.count())
	}
}

func TestReaperRescheduleReplacesPendingTimer(t *testing.T) {
	r := NewReaper(20 * time.Millisecond)
	defer r.Stop()
	rec := &fireRecorder{}

	// Rapid reconnect cycles must never accumulate timers.
	r.Schedule("lobby", "u1", rec.fire)
	r.Schedule("lobby", "u1", rec.fire)
	r.Schedule("lobby", "u1", rec.fire)

	time.Sleep(80 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected exactly one fire after reschedules, got %d", rec.count())
	}
}

func TestReaperKeysAreIndependent(t *testing.T) {
	r := NewReaper(10 * time.Millisecond)
	defer r.Stop()
	rec := &fireRecorder{}

	r.Schedule("lobby", "u1", rec.fire)
	r.Schedule("lobby", "u2", rec.fire)
	r.Cancel("lobby", "u2")

	time.Sleep(50 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.fires) != 1 || rec.fires[0] != "lobby/u1" {
		t.Fatalf("expected only lobby/u1 to fire, got %v", rec.fires)
	}
}

func TestReaperStopCancelsAll(t *testing.T) {
	r := NewReaper(20 * time.Millisecond)
	rec := &fireRecorder{}

	r.Schedule("lobby", "u1", rec.fire)
	r.Schedule("shop", "u2", rec.fire)
	r.Stop()

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("expected no fires after Stop, got %d", rec.count())
	}
}
