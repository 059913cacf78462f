package control

import (
	"github.com/google/uuid"

	"github.com/itohio/navstack/nav/geom"
)

// Status is the navigation lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlanning
	StatusMoving
	StatusBlocked
	StatusGoalReached
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlanning:
		return "planning"
	case StatusMoving:
		return "moving"
	case StatusBlocked:
		return "blocked"
	case StatusGoalReached:
		return "goal_reached"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Goal is a target pose with per-axis tolerances.
type Goal struct {
	Pose              geom.Pose
	PositionTolerance float32
	AngleTolerance    float32
	ID                uuid.UUID
}

// DefaultGoal wraps pose with spec.md's default tolerances.
func DefaultGoal(pose geom.Pose) Goal {
	return Goal{Pose: pose, PositionTolerance: 0.10, AngleTolerance: 0.10, ID: uuid.New()}
}

// State is the controller's externally-readable snapshot. It is mutated
// only by the Controller that owns it and must never be shared mutably
// across goroutines; NavigationState returns a copy.
type State struct {
	CurrentPose  geom.Pose
	IsNavigating bool
	CurrentGoal  *Goal
	Path         []geom.Pose
	Status       Status
	LastError    string
}
