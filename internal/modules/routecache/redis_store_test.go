package routecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func redisEntry(key string, seen time.Time) Entry {
	return Entry{
		Key:           key,
		SchemaVersion: SchemaVersion,
		Params:        Params{Origin: "a", Destination: "b"},
		Payload:       []byte(`[{"id":"route-1"}]`),
		FirstSeen:     seen,
		LastSeen:      seen,
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	seen := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Upsert(ctx, redisEntry("k1", seen)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Key != "k1" || e.Params.Origin != "a" || e.HitCount != 0 || e.Stale {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestRedisStoreTouch(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	seen := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Touch(ctx, "missing", seen); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch on missing key: %v", err)
	}

	if err := store.Upsert(ctx, redisEntry("k1", seen)); err != nil {
		t.Fatal(err)
	}
	n, err := store.Touch(ctx, "k1", seen.Add(time.Hour))
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if n != 1 {
		t.Errorf("hit count = %d, want 1", n)
	}
	if n, _ = store.Touch(ctx, "k1", seen.Add(2*time.Hour)); n != 2 {
		t.Errorf("hit count = %d, want 2", n)
	}

	e, _ := store.Get(ctx, "k1")
	if !e.LastSeen.After(seen) {
		t.Errorf("last_seen did not advance: %v", e.LastSeen)
	}
}

func TestRedisStoreUpsertPreservesFirstSeenAndHits(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	seen := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, redisEntry("k1", seen)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Touch(ctx, "k1", seen.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, redisEntry("k1", seen.Add(48*time.Hour))); err != nil {
		t.Fatal(err)
	}

	e, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if !e.FirstSeen.Equal(seen) {
		t.Errorf("first_seen = %v, want %v (preserved across refresh)", e.FirstSeen, seen)
	}
	if e.HitCount != 1 {
		t.Errorf("hit_count = %d, want 1 (preserved across refresh)", e.HitCount)
	}
}

func TestRedisStoreStale(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	seen := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.SetStale(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set stale on missing key: %v", err)
	}

	if err := store.Upsert(ctx, redisEntry("k1", seen)); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStale(ctx, "k1", true); err != nil {
		t.Fatal(err)
	}
	e, _ := store.Get(ctx, "k1")
	if !e.Stale {
		t.Error("entry should be stale")
	}

	// Re-upsert clears the flag.
	if err := store.Upsert(ctx, redisEntry("k1", seen)); err != nil {
		t.Fatal(err)
	}
	e, _ = store.Get(ctx, "k1")
	if e.Stale {
		t.Error("upsert should reset the stale flag")
	}
}

func TestRedisStoreDeleteOlderThan(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, redisEntry("old", now.AddDate(0, 0, -45))); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, redisEntry("fresh", now.AddDate(0, 0, -5))); err != nil {
		t.Fatal(err)
	}

	removed, err := store.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Error("old entry should be deleted")
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Error("fresh entry should survive")
	}

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalEntries != 1 {
		t.Errorf("entries after cleanup = %d, want 1", st.TotalEntries)
	}
}
