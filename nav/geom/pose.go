package geom

import "github.com/chewxy/math32"

// Pose is a planar position and heading. Theta is always kept in the
// canonical range (-pi, pi] by Canonicalize; constructors and arithmetic
// that produce a Pose should route the heading through it before
// returning.
type Pose struct {
	X, Y, Theta float32
}

// Point returns the position component of p as a PlanarPoint.
func (p Pose) Point() PlanarPoint {
	return PlanarPoint{X: p.X, Y: p.Y}
}

// DistanceTo returns the Euclidean distance between p and o's positions.
func (p Pose) DistanceTo(o Pose) float32 {
	return p.Point().Distance(o.Point())
}

// Canonicalize reduces an angle to (-pi, pi] via atan2(sin, cos). Relying on
// arithmetic wrapping (mod, repeated +/- 2pi) accumulates floating point
// drift over many updates, so every public function that returns an angle
// routes it through here exactly once.
func Canonicalize(theta float32) float32 {
	return math32.Atan2(math32.Sin(theta), math32.Cos(theta))
}

// AngleDiff returns the signed difference a-b reduced to (-pi, pi].
func AngleDiff(a, b float32) float32 {
	return Canonicalize(a - b)
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float32) float32 {
	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}
