package session

import (
	"fmt"
	"sync"
	"testing"

	"zozabot/internal/providers"
)

func TestHistoryEvictsOldestPastCapacity(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 7; i++ {
		h.Append(1, providers.Turn{Role: providers.RoleUser, Text: fmt.Sprintf("msg-%d", i)})
	}

	got := h.Snapshot(1)
	if len(got) != 3 {
		t.Fatalf("expected window of 3 turns, got %d", len(got))
	}
	for i, want := range []string{"msg-4", "msg-5", "msg-6"} {
		if got[i].Text != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, got[i].Text)
		}
	}
}

func TestHistorySnapshotIsIdempotentAndIsolated(t *testing.T) {
	h := NewHistory(8)
	h.Append(1, providers.Turn{Role: providers.RoleUser, Text: "hello"})
	h.Append(1, providers.Turn{Role: providers.RoleAssistant, Text: "hi there"})

	a := h.Snapshot(1)
	b := h.Snapshot(1)
	if len(a) != len(b) {
		t.Fatalf("snapshots differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("snapshots differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}

	// mutating the returned slice must not touch the store
	a[0].Text = "mutated"
	if h.Snapshot(1)[0].Text != "hello" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestHistoryUsersAreIndependent(t *testing.T) {
	h := NewHistory(2)
	h.Append(1, providers.Turn{Role: providers.RoleUser, Text: "from one"})

	if len(h.Snapshot(2)) != 0 {
		t.Fatal("expected empty history for unseen user")
	}
	if len(h.Snapshot(1)) != 1 {
		t.Fatal("expected one turn for user 1")
	}
}

func TestHistoryConcurrentAppends(t *testing.T) {
	h := NewHistory(4)

	var wg sync.WaitGroup
	for u := int64(1); u <= 8; u++ {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(user int64, i int) {
				defer wg.Done()
				h.Append(user, providers.Turn{Role: providers.RoleUser, Text: fmt.Sprintf("m-%d", i)})
			}(u, i)
		}
	}
	wg.Wait()

	for u := int64(1); u <= 8; u++ {
		if n := len(h.Snapshot(u)); n != 4 {
			t.Fatalf("user %d: expected capped window of 4, got %d", u, n)
		}
	}
}
