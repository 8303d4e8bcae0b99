package presence

import "testing"

func TestTrackerSetOnlineAndList(t *testing.T) {
	tr := NewTracker()

	tr.SetOnline("u1", "Ann")
	tr.SetOnline("u2", "Bob")
	tr.SetOnline("u1", "Ann") // idempotent

	list := tr.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].ID != "u1" || list[1].ID != "u2" {
		t.Fatalf("expected insertion order u1,u2; got %s,%s", list[0].ID, list[1].ID)
	}
	if list[0].Status != StatusOnline {
		t.Fatalf("expected online, got %s", list[0].Status)
	}
}

func TestTrackerSetOfflineKeepsEntry(t *testing.T) {
	tr := NewTracker()
	tr.SetOnline("u1", "Ann")

	tr.SetOffline("u1")

	list := tr.List()
	if len(list) != 1 {
		t.Fatalf("expected entry to survive offline, got %d entries", len(list))
	}
	if list[0].Status != StatusOffline || list[0].Name != "Ann" {
		t.Fatalf("expected offline Ann, got %+v", list[0])
	}

	tr.SetOnline("u1", "Ann")
	if got := tr.List()[0].Status; got != StatusOnline {
		t.Fatalf("expected online after reconnect, got %s", got)
	}
}

func TestTrackerRemove(t *testing.T) {
	tr := NewTracker()
	tr.SetOnline("u1", "Ann")
	tr.SetOnline("u2", "Bob")

	tr.Remove("u1")
	tr.Remove("u1") // total, no-op

	list := tr.List()
	if len(list) != 1 || list[0].ID != "u2" {
		t.Fatalf("expected only u2 left, got %+v", list)
	}
}

func TestTrackerSetOfflineUnknownIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.SetOffline("ghost")
	if len(tr.List()) != 0 {
		t.Fatal("expected empty tracker")
	}
}
