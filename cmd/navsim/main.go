// navsim drives the navigation stack headlessly against a frictionless
// point-mass simulation, exercising the end-to-end scenarios documented
// alongside the controller: empty world, a wall between start and goal,
// and a goal planted inside an obstacle.
package main

import (
	"context"
	"flag"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/itohio/navstack/log"
	"github.com/itohio/navstack/nav/config"
	"github.com/itohio/navstack/nav/control"
	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/grid"
	"github.com/itohio/navstack/nav/sense"
)

var (
	scenario = flag.String("scenario", "empty", "scenario to run: empty, wall, blocked-goal")
	ticks    = flag.Int("ticks", 300, "number of control ticks to simulate")
	dt       = flag.Float64("dt", 0.1, "seconds per control tick")
)

// emptySensor always returns no readings, for the empty-world scenario.
type emptySensor struct{}

func (emptySensor) Update(ctx context.Context, robotPosition, robotRotation geom.Vector3) ([]sense.Reading, error) {
	return nil, nil
}

func main() {
	flag.Parse()
	logger := log.Named("navsim")

	g := grid.Default()
	goal := geom.Pose{X: 5, Y: 0}

	switch *scenario {
	case "wall":
		for row := 280; row <= 320; row++ {
			for col := 340; col <= 360; col++ {
				g.Cells[row][col] = grid.Cell{Occupied: true, Probability: 0.95}
			}
		}
	case "blocked-goal":
		row, col := g.WorldToGrid(goal.X, goal.Y)
		for r := row - 3; r <= row+3; r++ {
			for c := col - 3; c <= col+3; c++ {
				g.Cells[r][c] = grid.Cell{Occupied: true, Probability: 0.95}
			}
		}
	}

	cfg := config.DefaultConfig()
	c, err := control.New(cfg, g, []sense.Sensor{emptySensor{}}, rand.New(rand.NewSource(1)))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct controller")
	}

	if err := c.SetGoal(control.DefaultGoal(goal)); err != nil {
		logger.Warn().Err(err).Msg("set_goal failed")
		st := c.NavigationState()
		logger.Info().Str("status", st.Status.String()).Str("last_error", st.LastError).Msg("final state")
		return
	}

	ctx := context.Background()
	var worldPosition geom.Vector3
	var heading float32
	step := float32(*dt)

	for i := 0; i < *ticks; i++ {
		st := c.NavigationState()
		if st.Status == control.StatusGoalReached || st.Status == control.StatusBlocked {
			logger.Info().Int("tick", i).Str("status", st.Status.String()).Msg("terminal state reached")
			break
		}

		linear, angular := c.VelocityCommand(ctx)
		heading += angular * step
		worldPosition.X += linear * step * math32.Cos(heading)
		worldPosition.Z += linear * step * math32.Sin(heading)

		c.UpdatePose(ctx, worldPosition, geom.Vector3{Y: heading})

		if i%50 == 0 {
			logger.Debug().
				Int("tick", i).
				Float32("x", st.CurrentPose.X).
				Float32("y", st.CurrentPose.Y).
				Str("status", st.Status.String()).
				Msg("tick")
		}
	}

	final := c.NavigationState()
	logger.Info().
		Str("status", final.Status.String()).
		Float32("x", final.CurrentPose.X).
		Float32("y", final.CurrentPose.Y).
		Msg("simulation finished")
}
