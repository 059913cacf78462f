package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/grid"
)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	p, err := New(DefaultParams(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return p
}

func TestNewRejectsInvalidParams(t *testing.T) {
	params := DefaultParams()
	params.StepSize = 0
	_, err := New(params, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestPlanEmptyWorldReachesGoal(t *testing.T) {
	g := grid.Default()
	p := newTestPlanner(t)

	start := geom.Pose{X: 0, Y: 0}
	goal := geom.Pose{X: 5, Y: 0}
	path, err := p.Plan(start, goal, g)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(path), 2)
	assert.InDelta(t, start.X, path[0].X, 1e-6)
	assert.InDelta(t, start.Y, path[0].Y, 1e-6)
	last := path[len(path)-1]
	assert.InDelta(t, goal.X, last.X, 1e-6)
	assert.InDelta(t, goal.Y, last.Y, 1e-6)
}

func TestPlanWaypointSpacingBounded(t *testing.T) {
	g := grid.Default()
	p := newTestPlanner(t)
	path, err := p.Plan(geom.Pose{X: 0, Y: 0}, geom.Pose{X: 5, Y: 0}, g)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(path), 2)

	for i := 1; i < len(path); i++ {
		d := path[i-1].DistanceTo(path[i])
		assert.LessOrEqual(t, d, 1.5*p.params.StepSize+1e-3)
	}
}

func TestPlanEverySampleIsInflatedTraversable(t *testing.T) {
	g := grid.Default()
	p := newTestPlanner(t)
	path, err := p.Plan(geom.Pose{X: 0, Y: 0}, geom.Pose{X: 5, Y: 0}, g)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(path), 2)

	for i := 1; i < len(path); i++ {
		assert.True(t, p.segmentTraversable(path[i-1].X, path[i-1].Y, path[i].X, path[i].Y, g))
	}
}

func TestPlanAvoidsWall(t *testing.T) {
	g := grid.Default()
	// Wall across the straight line from start to goal, at x in [-0.5, 0.55].
	for row := 280; row <= 320; row++ {
		for col := 290; col <= 310; col++ {
			g.Cells[row][col] = grid.Cell{Occupied: true, Probability: 0.95}
		}
	}

	p := newTestPlanner(t)
	start := geom.Pose{X: -5, Y: 0}
	goal := geom.Pose{X: 5, Y: 0}
	path, err := p.Plan(start, goal, g)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(path), 2)

	var length float32
	for i := 1; i < len(path); i++ {
		length += path[i-1].DistanceTo(path[i])
	}
	assert.Greater(t, length, float32(10.0))

	for i := 1; i < len(path); i++ {
		assert.True(t, p.segmentTraversable(path[i-1].X, path[i-1].Y, path[i].X, path[i].Y, g))
	}
}

func TestPlanGoalInsideObstacleReturnsEmpty(t *testing.T) {
	g := grid.Default()
	row, col := g.WorldToGrid(5, 0)
	for r := row - 3; r <= row+3; r++ {
		for c := col - 3; c <= col+3; c++ {
			g.Cells[r][c] = grid.Cell{Occupied: true, Probability: 0.95}
		}
	}

	p := newTestPlanner(t)
	path, err := p.Plan(geom.Pose{X: 0, Y: 0}, geom.Pose{X: 5, Y: 0}, g)
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Empty(t, path)
}

func TestPlanStartInsideObstacleReturnsEmpty(t *testing.T) {
	g := grid.Default()
	row, col := g.WorldToGrid(0, 0)
	for r := row - 3; r <= row+3; r++ {
		for c := col - 3; c <= col+3; c++ {
			g.Cells[r][c] = grid.Cell{Occupied: true, Probability: 0.95}
		}
	}

	p := newTestPlanner(t)
	path, err := p.Plan(geom.Pose{X: 0, Y: 0}, geom.Pose{X: 5, Y: 0}, g)
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Empty(t, path)
}
