// Package geom holds the planar pose and vector types shared by every
// navigation subsystem, plus the angle helpers. The grid/world transforms
// live on grid.Grid.
package geom

import "github.com/chewxy/math32"

// Vector3 is a real-valued 3D point used at the boundary with the world
// (physics/render side). Internally the navigation plane only ever reads
// two of its three components.
type Vector3 struct {
	X, Y, Z float32
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Planar extracts the navigation-plane PlanarPoint from a world Vector3
// using the sensor-boundary convention documented on sense.Reading: the
// plane lives in (X, Z) for world-frame vectors such as robot position,
// and in (X, Y) for vectors that already went through the sensor's y/z
// swap. Callers must use the accessor matching where the vector came
// from; see sense.Reading.Planar for the swapped case.
func (v Vector3) Planar() PlanarPoint {
	return PlanarPoint{X: v.X, Y: v.Z}
}

// PlanarPoint is a 2D point in the navigation plane. Introducing this type
// at the sensor boundary (rather than passing Vector3 around internally)
// is the redesign spec.md recommends: the y/z swap happens exactly once,
// converting into PlanarPoint. Vector3 remains only for world-frame
// odometry (the controller's position delta, read as (X, Z) by the
// particle filter's Predict).
type PlanarPoint struct {
	X, Y float32
}

// Sub returns p - o.
func (p PlanarPoint) Sub(o PlanarPoint) PlanarPoint {
	return PlanarPoint{p.X - o.X, p.Y - o.Y}
}

// Distance returns the Euclidean distance between p and o.
func (p PlanarPoint) Distance(o PlanarPoint) float32 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// Heading returns atan2(p.Y, p.X), the angle of the vector from the origin
// to p.
func (p PlanarPoint) Heading() float32 {
	return math32.Atan2(p.Y, p.X)
}
