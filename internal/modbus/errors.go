package modbus

import "errors"

// Domain errors for the modbus register layer.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when a register operation is attempted
	// outside an Open/Close bracket.
	ErrNotConnected = errors.New("modbus: session not connected")

	// ErrReadFailed is returned when the transport returns an error or an
	// incomplete reply for a register read.
	ErrReadFailed = errors.New("modbus: register read failed")

	// ErrWriteFailed is returned when the transport rejects a register write.
	ErrWriteFailed = errors.New("modbus: register write failed")

	// ErrVerifyMismatch is returned when a post-write read-back does not
	// match the requested value.
	ErrVerifyMismatch = errors.New("modbus: write verification mismatch")

	// ErrUnsupportedType is returned for operations a register type does not
	// support, such as writing a text register.
	ErrUnsupportedType = errors.New("modbus: unsupported register type")

	// ErrUnknownEnumValue is returned when a raw register value has no
	// member in the descriptor's enumeration.
	ErrUnknownEnumValue = errors.New("modbus: unknown enumeration value")

	// ErrInvalidDescriptor is returned for malformed register descriptors.
	// This is a configuration error and is fatal at startup.
	ErrInvalidDescriptor = errors.New("modbus: invalid register descriptor")

	// ErrInvalidValue is returned when a value cannot be encoded into the
	// descriptor's register width.
	ErrInvalidValue = errors.New("modbus: value not encodable")
)
