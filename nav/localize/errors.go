package localize

import "errors"

var (
	// ErrInvalidParticleCount is returned by New for a non-positive
	// particle count.
	ErrInvalidParticleCount = errors.New("localize: particle count must be positive")
)
