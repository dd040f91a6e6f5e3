package routecache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func testService(store Store) *Service {
	svc := NewService(store, 8)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc
}

func seed(t *testing.T, svc *Service, key string) {
	t.Helper()
	payload, _ := json.Marshal([]map[string]any{{"id": "route-1"}})
	svc.SaveNow(context.Background(), key, Params{Origin: "a", Destination: "b"}, payload)
}

func TestFindMissThenHit(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx := context.Background()

	if _, ok := svc.Find(ctx, "k1", false); ok {
		t.Fatal("empty cache should miss")
	}

	seed(t, svc, "k1")

	e, ok := svc.Find(ctx, "k1", false)
	if !ok {
		t.Fatal("expected hit after save")
	}
	if e.HitCount != 1 {
		t.Errorf("hit count = %d, want 1", e.HitCount)
	}
	if e.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", e.SchemaVersion, SchemaVersion)
	}

	e, _ = svc.Find(ctx, "k1", false)
	if e.HitCount != 2 {
		t.Errorf("hit count = %d, want 2 (monotonic)", e.HitCount)
	}
}

func TestFindForceUpdateBypasses(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx := context.Background()
	seed(t, svc, "k1")

	if _, ok := svc.Find(ctx, "k1", true); ok {
		t.Error("forceUpdate must be an unconditional miss")
	}
	// The bypass must not consume a hit.
	e, ok := svc.Find(ctx, "k1", false)
	if !ok || e.HitCount != 1 {
		t.Errorf("hit count after bypass = %d, want 1", e.HitCount)
	}
}

func TestFindStaleEntryMisses(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx := context.Background()
	seed(t, svc, "k1")

	if err := svc.MarkStale(ctx, "k1"); err != nil {
		t.Fatalf("mark stale: %v", err)
	}
	if _, ok := svc.Find(ctx, "k1", false); ok {
		t.Error("stale entry must be treated as a miss")
	}

	// A fresh save resets the stale flag.
	seed(t, svc, "k1")
	if _, ok := svc.Find(ctx, "k1", false); !ok {
		t.Error("save must reset the stale flag")
	}
}

func TestLastSeenOnlyMovesForward(t *testing.T) {
	store := NewMemoryStore()
	svc := testService(store)
	ctx := context.Background()
	seed(t, svc, "k1")

	e1, _ := svc.Find(ctx, "k1", false)

	// Simulate a lagging clock; last_seen must not regress.
	svc.now = func() time.Time { return e1.LastSeen.Add(-time.Hour) }
	e2, _ := svc.Find(ctx, "k1", false)
	if e2.LastSeen.Before(e1.LastSeen) {
		t.Errorf("last_seen regressed: %v -> %v", e1.LastSeen, e2.LastSeen)
	}
}

func TestCleanupRemovesOnlyAgedEntries(t *testing.T) {
	store := NewMemoryStore()
	svc := testService(store)
	ctx := context.Background()
	now := svc.now()

	old := Entry{Key: "old", SchemaVersion: SchemaVersion, Payload: []byte("{}"),
		FirstSeen: now.AddDate(0, 0, -45), LastSeen: now.AddDate(0, 0, -45)}
	fresh := Entry{Key: "fresh", SchemaVersion: SchemaVersion, Payload: []byte("{}"),
		FirstSeen: now.AddDate(0, 0, -5), LastSeen: now.AddDate(0, 0, -5)}
	if err := store.Upsert(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := svc.Find(ctx, "old", false); ok {
		t.Error("45-day entry should be gone")
	}
	if _, ok := svc.Find(ctx, "fresh", false); !ok {
		t.Error("5-day entry should survive")
	}
}

func TestStats(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx := context.Background()
	seed(t, svc, "k1")
	seed(t, svc, "k2")
	svc.Find(ctx, "k1", false)
	svc.Find(ctx, "k1", false)
	svc.Find(ctx, "k2", false)

	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalEntries != 2 || st.TotalHits != 3 {
		t.Errorf("stats = %+v, want 2 entries / 3 hits", st)
	}
	if st.OldestFirstSeen == nil || st.NewestFirstSeen == nil {
		t.Error("stats should report first_seen bounds")
	}
}

// failingStore simulates an unreachable backend.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string) (*Entry, error) { return nil, errStoreDown }
func (failingStore) Upsert(context.Context, Entry) error         { return errStoreDown }
func (failingStore) Touch(context.Context, string, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) SetStale(context.Context, string, bool) error { return errStoreDown }
func (failingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) Stats(context.Context) (Stats, error) { return Stats{}, errStoreDown }

func TestStorageErrorsDegradeToMiss(t *testing.T) {
	svc := testService(failingStore{})
	ctx := context.Background()

	if _, ok := svc.Find(ctx, "k1", false); ok {
		t.Error("a broken store must read as a miss")
	}
	// A dropped write must not panic or surface.
	svc.SaveNow(ctx, "k1", Params{}, []byte("{}"))
}

func TestRunDrainsWriteQueue(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	payload, _ := json.Marshal([]map[string]any{{"id": "route-1"}})
	svc.Save("k1", Params{Origin: "a", Destination: "b"}, payload)

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := svc.Find(ctx, "k1", false); ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("queued write was never persisted")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestConcurrentTouchKeepsEveryHit(t *testing.T) {
	svc := testService(NewMemoryStore())
	ctx := context.Background()
	seed(t, svc, "k1")

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			svc.Find(ctx, "k1", false)
		}()
	}
	close(start)
	wg.Wait()

	st, _ := svc.Stats(ctx)
	if st.TotalHits != workers {
		t.Errorf("hits = %d, want %d (no lost increments)", st.TotalHits, workers)
	}
}
