package history

import (
	"fmt"
	"testing"
)

func TestRing_Eviction(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Add(Record{ID: fmt.Sprintf("d%d", i)})
	}

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	// Newest first.
	for i, want := range []string{"d5", "d4", "d3"} {
		if snap[i].ID != want {
			t.Errorf("snap[%d].ID = %s, want %s", i, snap[i].ID, want)
		}
	}
	if r.Total() != 5 {
		t.Errorf("Total = %d, want 5", r.Total())
	}
}

func TestRing_Empty(t *testing.T) {
	r := NewRing(4)
	if snap := r.Snapshot(); len(snap) != 0 {
		t.Errorf("snapshot of empty ring has %d records", len(snap))
	}
}
