// Package control implements the navigation controller: the pose loop,
// goal tracking, replanning policy, and velocity command that orchestrate
// the grid, the particle filter, the planner, and VFH into motion.
package control

import (
	"context"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/itohio/navstack/log"
	"github.com/itohio/navstack/nav/config"
	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/grid"
	"github.com/itohio/navstack/nav/localize"
	"github.com/itohio/navstack/nav/planner"
	"github.com/itohio/navstack/nav/sense"
	"github.com/itohio/navstack/nav/vfh"
)

// Controller owns the occupancy grid, particle filter, planner, VFH,
// sensor list, and navigation state. It is a single logical actor: all
// mutation happens from the goroutine that calls its methods, and no
// method is safe to call concurrently with another.
type Controller struct {
	cfg     config.ControllerConfig
	grid    *grid.Grid
	filter  *localize.Filter
	planner *planner.Planner
	vfh     *vfh.VFH
	sensors []sense.Sensor

	state State

	lastWorldPosition geom.Vector3
	lastWorldRotation geom.Vector3
}

// New constructs a Controller from a config, an occupancy grid, and a
// sensor set, seeding the localizer at the origin with the config's
// initial spread.
func New(cfg config.Config, g *grid.Grid, sensors []sense.Sensor, rng *rand.Rand) (*Controller, error) {
	filter, err := localize.New(cfg.Localize, rng)
	if err != nil {
		return nil, err
	}
	filter.Initialize(geom.Pose{}, cfg.Localize.InitialSpreadM)

	p, err := planner.New(cfg.Planner.ToParams(), rng)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg.Controller,
		grid:    g,
		filter:  filter,
		planner: p,
		vfh:     vfh.New(cfg.VFH),
		sensors: sensors,
		state:   State{Status: StatusIdle},
	}
	return c, nil
}

// NavigationState returns a copy of the controller's current state.
func (c *Controller) NavigationState() State {
	st := c.state
	st.Path = append([]geom.Pose(nil), c.state.Path...)
	return st
}

// UpdatePose advances the localizer from an odometry sample, gathering
// sensor readings itself to correct the prediction, and checks for goal
// arrival. It implements spec.md's update_pose exactly.
func (c *Controller) UpdatePose(ctx context.Context, worldPosition, worldRotation geom.Vector3) {
	deltaPos := worldPosition.Sub(c.lastWorldPosition)
	deltaTheta := worldRotation.Y - c.state.CurrentPose.Theta

	c.filter.Predict(deltaPos, deltaTheta)

	readings := sense.Gather(ctx, c.sensors, worldPosition, worldRotation)
	occupied := filterOccupied(readings)
	if len(occupied) > 0 {
		c.filter.Update(occupied)
	}

	c.state.CurrentPose = c.filter.EstimatedPose()
	c.lastWorldPosition = worldPosition
	c.lastWorldRotation = worldRotation

	if c.state.IsNavigating && c.state.CurrentGoal != nil && c.goalReached(*c.state.CurrentGoal) {
		goalID := c.state.CurrentGoal.ID
		c.state.Path = nil
		c.state.IsNavigating = false
		c.state.Status = StatusGoalReached
		log.Named("control").Debug().Str("goal_id", goalID.String()).Msg("goal reached")
	}
}

func (c *Controller) goalReached(goal Goal) bool {
	dist := c.state.CurrentPose.DistanceTo(goal.Pose)
	angleDiff := math32.Abs(geom.AngleDiff(c.state.CurrentPose.Theta, goal.Pose.Theta))
	return dist < goal.PositionTolerance && angleDiff < goal.AngleTolerance
}

// SetGoal invokes the planner from the current pose and transitions
// status accordingly. It returns ErrInvalidGoal when the current pose or
// the goal pose is not traversable, and ErrNoPath when the planner
// exhausted its search budget without finding a route between two
// traversable poses.
func (c *Controller) SetGoal(goal Goal) error {
	c.state.Status = StatusPlanning
	c.state.CurrentGoal = &goal

	path, err := c.planner.Plan(c.state.CurrentPose, goal.Pose, c.grid)
	if err != nil {
		c.state.Status = StatusFailed
		c.state.LastError = ErrInvalidGoal.Error()
		c.state.IsNavigating = false
		return ErrInvalidGoal
	}
	if len(path) == 0 {
		c.state.Status = StatusFailed
		c.state.LastError = ErrNoPath.Error()
		c.state.IsNavigating = false
		return ErrNoPath
	}

	c.state.Path = path
	c.state.IsNavigating = true
	c.state.Status = StatusMoving
	log.Named("control").Debug().Str("goal_id", goal.ID.String()).Int("waypoints", len(path)).Msg("goal set")
	return nil
}

// UpdateMap integrates readings into the grid and, if the change is
// significant and a path is active, validates and possibly replans it. It
// returns ErrPathBlocked when the current path was invalidated by the map
// change and no replacement route could be found.
func (c *Controller) UpdateMap(readings []sense.Reading) error {
	changed := c.grid.Integrate(ToGridReadings(readings), c.state.CurrentPose)
	if !changed || !c.state.IsNavigating || c.state.CurrentGoal == nil {
		return nil
	}

	if c.pathStillValid() {
		return nil
	}

	log.Named("control").Debug().
		Str("fingerprint", c.grid.Fingerprint()).
		Msg("path invalidated by map change, replanning")

	path, err := c.planner.Plan(c.state.CurrentPose, c.state.CurrentGoal.Pose, c.grid)
	if err != nil || len(path) == 0 {
		c.state.IsNavigating = false
		c.state.Path = nil
		c.state.Status = StatusBlocked
		c.state.LastError = ErrPathBlocked.Error()
		return ErrPathBlocked
	}
	c.state.Path = path
	return nil
}

// pathStillValid samples every segment of the current path at spacing
// resolution*2 and rejects it if any sample lands in an occupied or
// high-probability cell.
func (c *Controller) pathStillValid() bool {
	path := c.state.Path
	spacing := c.grid.Resolution * 2
	for i := 1; i < len(path); i++ {
		x0, y0 := path[i-1].X, path[i-1].Y
		x1, y1 := path[i].X, path[i].Y
		dist := path[i-1].DistanceTo(path[i])
		steps := int(dist/spacing) + 1
		for s := 0; s <= steps; s++ {
			t := float32(s) / float32(steps)
			x := x0 + t*(x1-x0)
			y := y0 + t*(y1-y0)
			row, col := c.grid.WorldToGrid(x, y)
			cell, ok := c.grid.At(row, col)
			if !ok || cell.Occupied || cell.Probability > 0.5 {
				return false
			}
		}
	}
	return true
}

// VelocityCommand gathers current sensor readings and produces a
// (linear, angular) command toward the next waypoint, or an emergency
// stop if any reading is closer than EmergencyStopDistance.
func (c *Controller) VelocityCommand(ctx context.Context) (linear, angular float32) {
	if !c.state.IsNavigating || len(c.state.Path) == 0 {
		return 0, 0
	}

	readings := sense.Gather(ctx, c.sensors, c.lastWorldPosition, c.lastWorldRotation)
	minDist := minDistance(readings)
	if minDist < c.cfg.EmergencyStopDistance {
		log.Named("control").Debug().Float32("min_distance", minDist).Msg("emergency stop")
		return 0, 0
	}

	target := c.state.Path[0]
	dx := target.X - c.state.CurrentPose.X
	dy := target.Y - c.state.CurrentPose.Y
	dist := math32.Sqrt(dx*dx + dy*dy)
	targetAngle := math32.Atan2(dy, dx)

	safeAngle := c.vfh.FindBestDirection(readings, targetAngle, geom.PlanarPoint{X: dx, Y: dy})

	if dist < c.cfg.WaypointReachDistance {
		c.state.Path = c.state.Path[1:]
		if len(c.state.Path) == 0 {
			return 0, 0
		}
	}

	angleDiff := geom.AngleDiff(safeAngle, c.state.CurrentPose.Theta)
	speedFactor := geom.Clamp((minDist-c.cfg.EmergencyStopDistance)/1.0, 0.1, 1.0)
	linear = geom.Clamp(dist*0.5, 0, c.cfg.MaxLinearSpeed) * speedFactor * math32.Cos(angleDiff)
	if linear < 0 {
		linear = 0
	}
	angular = geom.Clamp(angleDiff*c.cfg.TurnGain, -1.0, 1.0)
	return linear, angular
}

// ToGridReadings projects sensor readings into the grid package's planar
// reading type, the boundary between the sensor/particle-filter world and
// the grid's own coordinate space.
func ToGridReadings(readings []sense.Reading) []grid.Reading {
	out := make([]grid.Reading, len(readings))
	for i, r := range readings {
		planar := r.Planar()
		out[i] = grid.Reading{X: planar.X, Y: planar.Y, Occupied: r.Occupied}
	}
	return out
}

func filterOccupied(readings []sense.Reading) []sense.Reading {
	out := readings[:0:0]
	for _, r := range readings {
		if r.Occupied {
			out = append(out, r)
		}
	}
	return out
}

func minDistance(readings []sense.Reading) float32 {
	if len(readings) == 0 {
		return math32.MaxFloat32
	}
	min := readings[0].Distance
	for _, r := range readings[1:] {
		if r.Distance < min {
			min = r.Distance
		}
	}
	return min
}
