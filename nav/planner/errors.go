package planner

import "errors"

var (
	// ErrInvalidPath indicates start or goal map to an untraversable cell.
	ErrInvalidPath = errors.New("planner: start or goal is not traversable")
	// ErrInvalidParameters indicates the planner's own tunables are
	// inconsistent (zero step size, negative iteration budget, and so on).
	ErrInvalidParameters = errors.New("planner: invalid parameters")
)
