// README: Cache entry model; provider payloads keyed by canonical request hash.
package routecache

import (
	"encoding/json"
	"time"
)

// SchemaVersion is stored alongside every entry so the payload layout can
// evolve without corrupting older rows; entries written under a different
// version are treated as misses.
const SchemaVersion = 1

// Entry is one cached provider response.
type Entry struct {
	Key           string          `json:"key"`
	SchemaVersion int             `json:"schema_version"`
	Params        Params          `json:"params"`
	Payload       json.RawMessage `json:"payload"`
	FirstSeen     time.Time       `json:"first_seen"`
	LastSeen      time.Time       `json:"last_seen"`
	HitCount      int64           `json:"hit_count"`
	Stale         bool            `json:"stale"`
}

// Stats summarizes cache population and usage.
type Stats struct {
	TotalEntries    int64      `json:"total_entries"`
	TotalHits       int64      `json:"total_hits"`
	OldestFirstSeen *time.Time `json:"oldest_first_seen,omitempty"`
	NewestFirstSeen *time.Time `json:"newest_first_seen,omitempty"`
}
