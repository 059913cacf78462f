package control

import "errors"

var (
	// ErrNoPath indicates the planner returned an empty path for SetGoal.
	ErrNoPath = errors.New("control: no path found to goal")
	// ErrPathBlocked indicates a map change invalidated the current path
	// and replanning also failed.
	ErrPathBlocked = errors.New("control: path blocked, replan failed")
	// ErrInvalidGoal indicates the start or goal pose is not traversable.
	ErrInvalidGoal = errors.New("control: start or goal is not traversable")
)
