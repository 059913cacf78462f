package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/navstack/nav/geom"
)

func TestDefaultGridDimensions(t *testing.T) {
	g := Default()
	assert.Equal(t, 600, g.Width)
	assert.Equal(t, 600, g.Height)
	assert.InDelta(t, -15, g.OriginX, 1e-5)
	assert.InDelta(t, -15, g.OriginY, 1e-5)
}

func TestEmptyGridIsUnknown(t *testing.T) {
	g := New(2, 2, 0.5)
	for _, row := range g.Cells {
		for _, c := range row {
			assert.False(t, c.Occupied)
			assert.Equal(t, float32(0.5), c.Probability)
		}
	}
}

func TestWorldGridRoundTrip(t *testing.T) {
	g := Default()
	for row := 0; row < g.Height; row += 37 {
		for col := 0; col < g.Width; col += 41 {
			x, y := g.GridToWorld(row, col)
			r2, c2 := g.WorldToGrid(x, y)
			assert.Equal(t, row, r2)
			assert.Equal(t, col, c2)
		}
	}
}

func TestIntegrateMarksHitOccupied(t *testing.T) {
	g := Default()
	robot := geom.Pose{X: 0, Y: 0}
	hitX, hitY := g.GridToWorld(300+10, 300) // a few cells away from origin's cell
	readings := []Reading{{X: hitX, Y: hitY, Occupied: true}}

	changed := g.Integrate(readings, robot)
	require.True(t, changed)

	hr, hc := g.WorldToGrid(hitX, hitY)
	cell, ok := g.At(hr, hc)
	require.True(t, ok)
	assert.True(t, cell.Occupied)
	assert.InDelta(t, 0.95, cell.Probability, 1e-6)
}

func TestIntegrateMarksPathFree(t *testing.T) {
	g := Default()
	robot := geom.Pose{X: 0, Y: 0}
	hitX, hitY := g.GridToWorld(320, 300)
	readings := []Reading{{X: hitX, Y: hitY, Occupied: true}}
	g.Integrate(readings, robot)

	robotRow, robotCol := g.WorldToGrid(robot.X, robot.Y)
	cell, ok := g.At(robotRow, robotCol)
	require.True(t, ok)
	assert.False(t, cell.Occupied)
	assert.InDelta(t, 0.10, cell.Probability, 1e-6)
}

func TestIntegrateIgnoresFreeReadings(t *testing.T) {
	g := Default()
	before := g.Fingerprint()
	readings := []Reading{{X: 5, Y: 5, Occupied: false}}
	changed := g.Integrate(readings, geom.Pose{})
	assert.False(t, changed)
	assert.Equal(t, before, g.Fingerprint())
}

func TestIntegrateOutOfBoundsSkipped(t *testing.T) {
	g := Default()
	readings := []Reading{{X: 1000, Y: 1000, Occupied: true}}
	assert.NotPanics(t, func() {
		g.Integrate(readings, geom.Pose{})
	})
}

func TestIntegrateIdempotent(t *testing.T) {
	g := Default()
	hitX, hitY := g.GridToWorld(320, 300)
	readings := []Reading{{X: hitX, Y: hitY, Occupied: true}}

	g.Integrate(readings, geom.Pose{})
	fp1 := g.Fingerprint()
	g.Integrate(readings, geom.Pose{})
	fp2 := g.Fingerprint()

	assert.Equal(t, fp1, fp2)
}

func TestInflatedTraversableRespectsMargin(t *testing.T) {
	g := New(1, 1, 0.05) // 20x20
	center := 10
	g.Cells[center][center] = Cell{Occupied: true, Probability: 0.95}

	assert.False(t, g.InflatedTraversable(center, center, 2))
	assert.False(t, g.InflatedTraversable(center+1, center, 2))
	assert.True(t, g.InflatedTraversable(center+5, center+5, 2))
}

func TestInflatedTraversableOutOfBoundsIsFalse(t *testing.T) {
	g := New(1, 1, 0.1) // 10x10
	assert.False(t, g.InflatedTraversable(0, 0, 2))
}
