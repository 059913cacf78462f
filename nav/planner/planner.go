// Package planner implements a sampling-based (RRT) path planner over an
// occupancy grid: feasibility-only, no optimality guarantee, bounded by an
// iteration budget and a wall-clock timeout.
package planner

import (
	"math/rand"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/navstack/log"
	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/grid"
)

// Params holds the planner's fixed tunables.
type Params struct {
	MaxIterations   int
	StepSize        float32
	GoalBias        float32
	Timeout         time.Duration
	InflationMargin int
}

// DefaultParams returns the navigation stack's default RRT tunables.
func DefaultParams() Params {
	return Params{
		MaxIterations:   1000,
		StepSize:        0.5,
		GoalBias:        0.10,
		Timeout:         2000 * time.Millisecond,
		InflationMargin: 2,
	}
}

// Validate rejects tunables that cannot produce a usable planner.
func (p Params) Validate() error {
	if p.MaxIterations <= 0 || p.StepSize <= 0 || p.Timeout <= 0 {
		return ErrInvalidParameters
	}
	if p.GoalBias < 0 || p.GoalBias > 1 {
		return ErrInvalidParameters
	}
	if p.InflationMargin < 0 {
		return ErrInvalidParameters
	}
	return nil
}

// node is one arena-allocated tree vertex. The tree is a flat slice with
// back-pointers by index; it is discarded at the end of every Plan call.
type node struct {
	x, y   float32
	parent int // -1 for the root
}

// Planner grows an RRT over a grid snapshot to find a feasible path
// between two poses. It holds no state across calls other than its RNG.
type Planner struct {
	params Params
	rng    *rand.Rand
}

// New validates params and returns a Planner.
func New(params Params, rng *rand.Rand) (*Planner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Planner{params: params, rng: rng}, nil
}

// Plan searches for a feasible path from start to goal over g. It returns
// ErrInvalidPath when start or goal itself is not traversable; if the
// search instead exhausts its iteration/time budget without finding a
// route, it returns a nil path and a nil error, the "no path found"
// signal the controller maps to ErrNoPath.
func (p *Planner) Plan(start, goal geom.Pose, g *grid.Grid) ([]geom.Pose, error) {
	logger := log.Named("planner")

	if !p.poseTraversable(start, g) || !p.poseTraversable(goal, g) {
		logger.Debug().Msg("start or goal not traversable")
		return nil, ErrInvalidPath
	}

	deadline := time.Now().Add(p.params.Timeout)
	nodes := []node{{x: start.X, y: start.Y, parent: -1}}

	for iter := 0; iter < p.params.MaxIterations; iter++ {
		if time.Now().After(deadline) {
			logger.Debug().Int("iterations", iter).Msg("planner timed out")
			break
		}

		targetX, targetY := p.sampleTarget(goal, g)
		nearest := p.nearestNode(nodes, targetX, targetY)

		newX, newY := p.extend(nodes[nearest], targetX, targetY)
		if !p.segmentTraversable(nodes[nearest].x, nodes[nearest].y, newX, newY, g) {
			continue
		}

		nodes = append(nodes, node{x: newX, y: newY, parent: nearest})
		newIdx := len(nodes) - 1

		if dist(newX, newY, goal.X, goal.Y) < 1.5*p.params.StepSize {
			return buildPath(nodes, newIdx, start, goal), nil
		}
	}

	logger.Debug().Msg("planner exhausted budget, no path found")
	return nil, nil
}

func (p *Planner) poseTraversable(pose geom.Pose, g *grid.Grid) bool {
	row, col := g.WorldToGrid(pose.X, pose.Y)
	return g.InflatedTraversable(row, col, p.params.InflationMargin)
}

// sampleTarget picks the goal with probability GoalBias, else a uniform
// point in map bounds, retrying up to 100 times to land on an
// inflated-traversable cell before accepting whatever was last drawn.
func (p *Planner) sampleTarget(goal geom.Pose, g *grid.Grid) (float32, float32) {
	if p.rng.Float32() < p.params.GoalBias {
		return goal.X, goal.Y
	}

	minX, minY := g.OriginX, g.OriginY
	maxX := g.OriginX + float32(g.Width)*g.Resolution
	maxY := g.OriginY + float32(g.Height)*g.Resolution

	var x, y float32
	for attempt := 0; attempt < 100; attempt++ {
		x = minX + p.rng.Float32()*(maxX-minX)
		y = minY + p.rng.Float32()*(maxY-minY)
		row, col := g.WorldToGrid(x, y)
		if g.InflatedTraversable(row, col, p.params.InflationMargin) {
			return x, y
		}
	}
	return x, y
}

func (p *Planner) nearestNode(nodes []node, x, y float32) int {
	best := 0
	bestDist := dist(nodes[0].x, nodes[0].y, x, y)
	for i := 1; i < len(nodes); i++ {
		d := dist(nodes[i].x, nodes[i].y, x, y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// extend returns target itself when within one step, else a point exactly
// StepSize along the heading from nearest toward target.
func (p *Planner) extend(nearest node, targetX, targetY float32) (float32, float32) {
	d := dist(nearest.x, nearest.y, targetX, targetY)
	if d < p.params.StepSize {
		return targetX, targetY
	}
	heading := math32.Atan2(targetY-nearest.y, targetX-nearest.x)
	return nearest.x + p.params.StepSize*math32.Cos(heading), nearest.y + p.params.StepSize*math32.Sin(heading)
}

// segmentTraversable samples the segment at ceil(dist/(resolution/4))+1
// points and requires every sample to be inflated-traversable.
func (p *Planner) segmentTraversable(x0, y0, x1, y1 float32, g *grid.Grid) bool {
	d := dist(x0, y0, x1, y1)
	samples := int(math32.Ceil(d/(g.Resolution/4))) + 1
	if samples < 2 {
		samples = 2
	}
	for i := 0; i < samples; i++ {
		t := float32(i) / float32(samples-1)
		x := x0 + t*(x1-x0)
		y := y0 + t*(y1-y0)
		row, col := g.WorldToGrid(x, y)
		if !g.InflatedTraversable(row, col, p.params.InflationMargin) {
			return false
		}
	}
	return true
}

// buildPath walks parent back-pointers from leafIdx to the root, reverses
// the walk, prepends start and appends goal verbatim, then assigns each
// waypoint's heading as the atan2 of its outgoing segment (the final
// waypoint inherits the heading of the segment leading into it).
func buildPath(nodes []node, leafIdx int, start, goal geom.Pose) []geom.Pose {
	var rev []node
	for i := leafIdx; i != -1; i = nodes[i].parent {
		rev = append(rev, nodes[i])
	}

	points := make([]geom.PlanarPoint, 0, len(rev)+2)
	points = append(points, start.Point())
	for i := len(rev) - 1; i >= 0; i-- {
		points = append(points, geom.PlanarPoint{X: rev[i].x, Y: rev[i].y})
	}
	points = append(points, goal.Point())

	path := make([]geom.Pose, len(points))
	for i := range points {
		var heading float32
		if i+1 < len(points) {
			heading = math32.Atan2(points[i+1].Y-points[i].Y, points[i+1].X-points[i].X)
		} else {
			heading = math32.Atan2(points[i].Y-points[i-1].Y, points[i].X-points[i-1].X)
		}
		path[i] = geom.Pose{X: points[i].X, Y: points[i].Y, Theta: geom.Canonicalize(heading)}
	}
	return path
}

func dist(x0, y0, x1, y1 float32) float32 {
	dx, dy := x1-x0, y1-y0
	return math32.Sqrt(dx*dx + dy*dy)
}
