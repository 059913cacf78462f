// Package sense defines the sensor reading contract between the navigation
// stack and the (out of scope) sensor hardware/ray-cast backends.
package sense

import (
	"context"

	"github.com/itohio/navstack/log"
	"github.com/itohio/navstack/nav/geom"
)

// Reading is a single range measurement: bearing and distance to a hit
// point, or a clear reading out to the sensor's max range.
//
// Point is already in the sensor-boundary convention: world X stays X,
// world Z becomes Point's "Y" slot. Every consumer in this module reads the
// planar Y coordinate from Point.Y, through Planar. The
// swap happens exactly once, in the sensor's Update implementation or at
// the point a raw Vector3 is wrapped into a Reading — nowhere else.
type Reading struct {
	Point    geom.Vector3
	Distance float32
	Occupied bool
	MeshID   string
	Normal   [3]float32
}

// Planar returns the reading's hit point projected into the navigation
// plane. Point is already swapped at the sensor boundary (X stays X, Z
// becomes the Y slot), so this is a direct field read — the one and only
// place any code needs to know about the swap convention. Every consumer
// (the grid, the particle filter, VFH) calls this instead of touching
// Point's fields directly.
func (r Reading) Planar() geom.PlanarPoint {
	return geom.PlanarPoint{X: r.Point.X, Y: r.Point.Y}
}

// Sensor is any value that can be asked for a batch of readings given the
// robot's current world pose. Implementations may do blocking or
// asynchronous I/O; the controller awaits the whole batch before applying
// it (gather semantics), never blocking on an individual sensor mid-tick.
type Sensor interface {
	Update(ctx context.Context, robotPosition, robotRotation geom.Vector3) ([]Reading, error)
}

// Gather polls every sensor concurrently and returns the concatenation of
// all readings it got back. A sensor that errors or returns nothing is
// skipped for that tick rather than failing the whole gather — per
// spec.md's SensorFailure policy, a missing sensor means "skip filter
// update this tick," not "abort."
func Gather(ctx context.Context, sensors []Sensor, robotPosition, robotRotation geom.Vector3) []Reading {
	type result struct {
		readings []Reading
	}
	results := make([]result, len(sensors))
	done := make(chan int, len(sensors))

	for i, s := range sensors {
		go func(i int, s Sensor) {
			readings, err := s.Update(ctx, robotPosition, robotRotation)
			if err != nil {
				log.Named("sense").Warn().Err(err).Int("sensor", i).Msg("sensor update failed, skipping")
			} else {
				results[i] = result{readings: readings}
			}
			done <- i
		}(i, s)
	}
	for range sensors {
		<-done
	}

	var all []Reading
	for _, r := range results {
		all = append(all, r.readings...)
	}
	return all
}
