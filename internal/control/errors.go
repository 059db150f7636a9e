package control

import "errors"

// Domain errors for the control package.
var (
	// ErrInvalidConfig is returned when the controller configuration is
	// unusable. Fatal at startup.
	ErrInvalidConfig = errors.New("control: invalid configuration")

	// ErrMissingField is returned when a guard needs a snapshot field that
	// is absent. The guard is skipped for the cycle.
	ErrMissingField = errors.New("control: required snapshot field missing")

	// ErrFieldType is returned when a snapshot field has an unexpected type.
	ErrFieldType = errors.New("control: snapshot field has unexpected type")
)
