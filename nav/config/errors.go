package config

import "errors"

// ErrInvalidConfig indicates one or more tunables are out of their valid
// range.
var ErrInvalidConfig = errors.New("config: invalid configuration")
