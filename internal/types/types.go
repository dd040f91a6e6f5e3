// README: Shared value objects used across modules.
package types

// ID is an opaque identifier (UUID or external key).
type ID string

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}
