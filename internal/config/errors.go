package config

import "errors"

// ErrInvalidConfig is wrapped by every validation failure produced in this
// package. Match with [errors.Is].
var ErrInvalidConfig = errors.New("invalid configuration")
