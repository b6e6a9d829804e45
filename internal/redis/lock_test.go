package redisclient

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestDedupeSorted(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	got := dedupeSorted([]uuid.UUID{c, a, b, a, c})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].String() < got[j].String()
	}) {
		t.Errorf("not sorted: %v", got)
	}

	seen := make(map[uuid.UUID]bool)
	for _, id := range got {
		if seen[id] {
			t.Errorf("duplicate %s survived", id)
		}
		seen[id] = true
	}

	if out := dedupeSorted(nil); len(out) != 0 {
		t.Errorf("dedupe(nil) = %v, want empty", out)
	}
}

func TestDedupeSorted_StableAcrossInputOrder(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	forward := dedupeSorted([]uuid.UUID{ids[0], ids[1], ids[2]})
	reverse := dedupeSorted([]uuid.UUID{ids[2], ids[1], ids[0]})

	// Two operations locking the same slots must agree on acquisition
	// order regardless of how the caller listed them.
	for i := range forward {
		if forward[i] != reverse[i] {
			t.Fatalf("order differs at %d: %s vs %s", i, forward[i], reverse[i])
		}
	}
}

func TestLocalLockerSerializes(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()
	slot := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithSlotLocks(ctx, []uuid.UUID{slot}, func(ctx context.Context) error {
				counter++
				return nil
			})
			if err != nil {
				t.Errorf("lock: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != 32 {
		t.Fatalf("counter = %d, want 32", counter)
	}
}
