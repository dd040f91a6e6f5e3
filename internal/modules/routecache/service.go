// README: Cache service; lookup/refresh semantics and the background write queue.
package routecache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

type saveJob struct {
	key     string
	params  Params
	payload json.RawMessage
}

// Service implements the caching policy in front of the routing provider.
// Reads are synchronous; writes go through a buffered queue drained by
// Run so the response path never waits on storage.
type Service struct {
	store  Store
	writes chan saveJob
	now    func() time.Time
}

func NewService(store Store, queueLen int) *Service {
	if queueLen <= 0 {
		queueLen = 256
	}
	return &Service{
		store:  store,
		writes: make(chan saveJob, queueLen),
		now:    time.Now,
	}
}

// Find returns the cached entry for key, or a miss. forceUpdate and stale
// entries are unconditional misses. A hit bumps hit_count and last_seen.
// Storage errors are logged and reported as misses: the caller must always
// be able to proceed to the provider.
func (s *Service) Find(ctx context.Context, key string, forceUpdate bool) (*Entry, bool) {
	if forceUpdate {
		return nil, false
	}

	e, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("warn: cache read failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	if e.Stale {
		return nil, false
	}
	if e.SchemaVersion != SchemaVersion {
		log.Printf("cache entry schema mismatch key=%s have=%d want=%d", key, e.SchemaVersion, SchemaVersion)
		return nil, false
	}

	now := s.now()
	hits, err := s.store.Touch(ctx, key, now)
	if err != nil {
		// The payload is still good; serve it with the stored counters.
		log.Printf("warn: cache touch failed key=%s err=%v", key, err)
		return e, true
	}
	e.HitCount = hits
	if now.After(e.LastSeen) {
		e.LastSeen = now
	}
	return e, true
}

// Save enqueues a best-effort upsert. It never blocks: when the queue is
// full the write is dropped and logged, never surfaced to the requester.
func (s *Service) Save(key string, params Params, payload json.RawMessage) {
	select {
	case s.writes <- saveJob{key: key, params: params, payload: payload}:
	default:
		log.Printf("warn: cache write queue full, dropping key=%s", key)
	}
}

// Run drains the write queue until ctx is cancelled. Intended to run as a
// goroutine from the composition root.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.writes:
			s.persist(ctx, job)
		}
	}
}

func (s *Service) persist(ctx context.Context, job saveJob) {
	now := s.now()
	err := s.store.Upsert(ctx, Entry{
		Key:           job.key,
		SchemaVersion: SchemaVersion,
		Params:        job.params,
		Payload:       job.payload,
		FirstSeen:     now,
		LastSeen:      now,
	})
	if err != nil {
		log.Printf("warn: cache write failed key=%s err=%v", job.key, err)
	}
}

// SaveNow performs the upsert synchronously. Used by tests and by the
// maintenance binary, where there is no writer goroutine.
func (s *Service) SaveNow(ctx context.Context, key string, params Params, payload json.RawMessage) {
	s.persist(ctx, saveJob{key: key, params: params, payload: payload})
}

// MarkStale flags an entry for mandatory refresh on the next lookup.
func (s *Service) MarkStale(ctx context.Context, key string) error {
	return s.store.SetStale(ctx, key, true)
}

// Cleanup removes entries whose last_seen precedes now minus maxAgeDays.
func (s *Service) Cleanup(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -maxAgeDays)
	return s.store.DeleteOlderThan(ctx, cutoff)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// RunCleanup deletes aged entries on a fixed interval (composition-root
// goroutine, same shape as Run).
func (s *Service) RunCleanup(ctx context.Context, every time.Duration, maxAgeDays int) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(ctx, maxAgeDays)
			if err != nil {
				log.Printf("warn: cache cleanup failed err=%v", err)
				continue
			}
			if removed > 0 {
				log.Printf("cache cleanup removed=%d max_age_days=%d", removed, maxAgeDays)
			}
		}
	}
}
