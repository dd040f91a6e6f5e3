// README: Request canonicalization and deterministic cache-key derivation.
package routecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Defaults substituted for omitted optional request fields. They are part
// of the canonical form: an omitted field and its explicit default hash to
// the same key.
const (
	DefaultAxles           = "all"
	DefaultFreightCategory = "A"
	DefaultCargoType       = "geral"
)

// Params is the canonical, hashed projection of a pricing request. The
// force-update flag is deliberately absent: it bypasses the cache, it is
// not a cache dimension.
type Params struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	Waypoints       []string `json:"waypoints,omitempty"`
	VehicleType     string   `json:"vehicle_type"`
	VehicleAxles    string   `json:"vehicle_axles"`
	FreightCategory string   `json:"freight_category"`
	CargoType       string   `json:"cargo_type"`
	UseTolls        bool     `json:"use_tolls"`
	UseHighways     bool     `json:"use_highways"`
}

// Canonicalize normalizes params into their stable form: strings
// lower-cased and trimmed, waypoints sorted, defaults substituted.
// Case and waypoint order do not affect the result; diacritics are kept
// as-is ("São Paulo" and "sao paulo" are distinct lanes).
func Canonicalize(p Params) Params {
	out := p
	out.Origin = normalize(p.Origin)
	out.Destination = normalize(p.Destination)

	out.Waypoints = nil
	for _, w := range p.Waypoints {
		if n := normalize(w); n != "" {
			out.Waypoints = append(out.Waypoints, n)
		}
	}
	sort.Strings(out.Waypoints)

	out.VehicleType = normalize(p.VehicleType)
	if out.VehicleAxles = normalize(p.VehicleAxles); out.VehicleAxles == "" {
		out.VehicleAxles = DefaultAxles
	}
	if out.FreightCategory = strings.ToUpper(strings.TrimSpace(p.FreightCategory)); out.FreightCategory == "" {
		out.FreightCategory = DefaultFreightCategory
	}
	if out.CargoType = normalize(p.CargoType); out.CargoType == "" {
		out.CargoType = DefaultCargoType
	}
	return out
}

// Key derives the deterministic cache key for already-canonical params: a
// fixed-order serialization fed through SHA-256.
func Key(p Params) string {
	var b strings.Builder
	b.WriteString("o=")
	b.WriteString(p.Origin)
	b.WriteString("|d=")
	b.WriteString(p.Destination)
	b.WriteString("|w=")
	b.WriteString(strings.Join(p.Waypoints, ","))
	b.WriteString("|vt=")
	b.WriteString(p.VehicleType)
	b.WriteString("|ax=")
	b.WriteString(p.VehicleAxles)
	b.WriteString("|fc=")
	b.WriteString(p.FreightCategory)
	b.WriteString("|ct=")
	b.WriteString(p.CargoType)
	fmt.Fprintf(&b, "|tolls=%t|hw=%t", p.UseTolls, p.UseHighways)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
