// Package config aggregates every tunable of the navigation stack into one
// loadable/validatable struct.
package config

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/navstack/nav/localize"
	"github.com/itohio/navstack/nav/planner"
	"github.com/itohio/navstack/nav/vfh"
)

// GridConfig configures the occupancy grid's size and resolution.
type GridConfig struct {
	WidthM     float32 `yaml:"width_m"`
	HeightM    float32 `yaml:"height_m"`
	Resolution float32 `yaml:"resolution"`
}

// ControllerConfig configures the navigation controller's gains and
// tolerances.
type ControllerConfig struct {
	GoalPositionTolerance float32 `yaml:"goal_position_tolerance"`
	GoalAngleTolerance    float32 `yaml:"goal_angle_tolerance"`
	EmergencyStopDistance float32 `yaml:"emergency_stop_distance"`
	WaypointReachDistance float32 `yaml:"waypoint_reach_distance"`
	MaxLinearSpeed        float32 `yaml:"max_linear_speed"`
	TurnGain              float32 `yaml:"turn_gain"`
}

// Config holds every tunable named across the navigation stack's
// components, loadable from YAML and validated as a whole before use.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Localize   localize.Params  `yaml:"localize"`
	Planner    PlannerConfig    `yaml:"planner"`
	VFH        vfh.Params       `yaml:"vfh"`
	Controller ControllerConfig `yaml:"controller"`
}

// PlannerConfig mirrors planner.Params with a YAML-friendly timeout field
// (planner.Params.Timeout is a time.Duration, serialized as milliseconds).
type PlannerConfig struct {
	MaxIterations   int     `yaml:"max_iterations"`
	StepSize        float32 `yaml:"step_size"`
	GoalBias        float32 `yaml:"goal_bias"`
	TimeoutMS       int     `yaml:"timeout_ms"`
	InflationMargin int     `yaml:"inflation_margin"`
}

// ToParams converts the YAML-friendly config into planner.Params.
func (p PlannerConfig) ToParams() planner.Params {
	return planner.Params{
		MaxIterations:   p.MaxIterations,
		StepSize:        p.StepSize,
		GoalBias:        p.GoalBias,
		Timeout:         time.Duration(p.TimeoutMS) * time.Millisecond,
		InflationMargin: p.InflationMargin,
	}
}

func plannerConfigFromParams(p planner.Params) PlannerConfig {
	return PlannerConfig{
		MaxIterations:   p.MaxIterations,
		StepSize:        p.StepSize,
		GoalBias:        p.GoalBias,
		TimeoutMS:       int(p.Timeout / time.Millisecond),
		InflationMargin: p.InflationMargin,
	}
}

// DefaultConfig returns the navigation stack's defaults, matching every
// component's own DefaultParams.
func DefaultConfig() Config {
	return Config{
		Grid:       GridConfig{WidthM: 30, HeightM: 30, Resolution: 0.05},
		Localize:   localize.DefaultParams(),
		Planner:    plannerConfigFromParams(planner.DefaultParams()),
		VFH:        vfh.DefaultParams(),
		Controller: ControllerConfig{
			GoalPositionTolerance: 0.1,
			GoalAngleTolerance:    0.1,
			EmergencyStopDistance: 0.3,
			WaypointReachDistance: 0.3,
			MaxLinearSpeed:        0.5,
			TurnGain:              2.0,
		},
	}
}

// Validate checks every group of tunables for internal consistency.
func (c Config) Validate() error {
	if c.Grid.WidthM <= 0 || c.Grid.HeightM <= 0 || c.Grid.Resolution <= 0 {
		return ErrInvalidConfig
	}
	if c.Localize.N <= 0 {
		return ErrInvalidConfig
	}
	if err := c.Planner.ToParams().Validate(); err != nil {
		return err
	}
	if c.VFH.NumSectors <= 0 || c.VFH.SafeDistance <= 0 || c.VFH.MaxRange <= 0 {
		return ErrInvalidConfig
	}
	if c.Controller.MaxLinearSpeed <= 0 || c.Controller.TurnGain <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Load decodes a Config from YAML and validates it.
func Load(r io.Reader) (Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
