package session_test

import (
	"testing"

	"github.com/campuskit/gradebook/core"
	"github.com/campuskit/gradebook/core/session"
)

func TestTracker(t *testing.T) {
	tracker := session.NewTracker(core.NopLogger{})

	if tracker.Contains("412345678") {
		t.Error("Contains() = true on an empty tracker")
	}

	tracker.Add("412345678")
	tracker.Add("1234")
	if !tracker.Contains("412345678") || !tracker.Contains("1234") {
		t.Error("Contains() = false for added IDs")
	}
	if got := tracker.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}

	// adding twice keeps one entry
	tracker.Add("1234")
	if got := tracker.Len(); got != 2 {
		t.Errorf("Len() after re-add = %d, want 2", got)
	}

	wantIDs := []string{"1234", "412345678"} // sorted
	gotIDs := tracker.IDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("IDs() = %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, gotIDs[i], wantIDs[i])
		}
	}

	tracker.Remove("412345678")
	if tracker.Contains("412345678") {
		t.Error("Contains() = true after Remove()")
	}
	// removing again is a no-op
	tracker.Remove("412345678")
	if got := tracker.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
