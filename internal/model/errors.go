package model

import "github.com/rotisserie/eris"

var (
	// ErrInvalidConfig is wrapped by engine constructors that reject their configuration.
	ErrInvalidConfig = eris.New("invalid configuration")
	// ErrNotFound is returned when a carrier profile does not exist.
	ErrNotFound = eris.New("not found")
)
