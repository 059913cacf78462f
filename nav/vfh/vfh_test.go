package vfh

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/sense"
)

func reading(x, y, dist float32) sense.Reading {
	return sense.Reading{Point: geom.Vector3{X: x, Y: y}, Distance: dist, Occupied: true}
}

// With an empty histogram every sector is a valley, so the pick is the
// center of the sector nearest the target: sector 0, half a sector past 0.
func TestFindBestDirectionNoObstaclesPicksSectorNearestTarget(t *testing.T) {
	v := New(DefaultParams())
	current := geom.PlanarPoint{X: 1, Y: 0}
	angle := v.FindBestDirection(nil, 0, current)
	assert.InDelta(t, v.params.sectorSize()/2, angle, 1e-5)
}

func TestFindBestDirectionIgnoresReadingsBeyondMaxRange(t *testing.T) {
	v := New(DefaultParams())
	readings := []sense.Reading{reading(10, 0, 10)}
	current := geom.PlanarPoint{X: 1, Y: 0}
	angle := v.FindBestDirection(readings, 0, current)
	assert.InDelta(t, v.params.sectorSize()/2, angle, 1e-5)
}

func TestFindBestDirectionPrefersTargetWhenClear(t *testing.T) {
	v := New(DefaultParams())
	// A single close obstacle directly behind the robot; the forward
	// direction toward target should remain a valid, chosen valley.
	readings := []sense.Reading{reading(-1, 0, 1)}
	target := float32(0)
	current := geom.PlanarPoint{X: 1, Y: 0}

	angle := v.FindBestDirection(readings, target, current)
	assert.InDelta(t, 0.0, geom.AngleDiff(angle, target), 0.5)
}

func TestFindBestDirectionAvoidsDenseSector(t *testing.T) {
	v := New(DefaultParams())
	// Dense obstacles directly ahead; several toward the side are clear.
	readings := []sense.Reading{
		reading(1, 0, 0.2),
		reading(0.95, 0.1, 0.2),
		reading(0.95, -0.1, 0.2),
	}
	target := float32(0) // straight ahead, but blocked
	current := geom.PlanarPoint{X: 1, Y: 0}

	angle := v.FindBestDirection(readings, target, current)
	// The chosen direction should not be the blocked forward sector.
	assert.Greater(t, math32.Abs(geom.AngleDiff(angle, target)), float32(0.1))
}

func TestSmoothIsCircular(t *testing.T) {
	v := New(DefaultParams())
	h := make([]float32, v.params.NumSectors)
	h[0] = 1.0
	s := v.smooth(h)
	// The kernel should wrap density from sector 0 into the last sectors.
	assert.Greater(t, s[len(s)-1], float32(0))
	assert.Greater(t, s[1], float32(0))
}

func TestBuildHistogramWeightsCloserReadingsMore(t *testing.T) {
	v := New(DefaultParams())
	near := v.buildHistogram([]sense.Reading{reading(0.5, 0, 0.2)})
	far := v.buildHistogram([]sense.Reading{reading(0.5, 0, 0.9)})

	var nearSum, farSum float32
	for i := range near {
		nearSum += near[i]
		farSum += far[i]
	}
	assert.Greater(t, nearSum, farSum)
}
