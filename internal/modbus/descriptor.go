package modbus

import "fmt"

// RegisterType identifies the logical type stored in a holding register.
type RegisterType int

const (
	// TypeText is fixed-length ASCII text packed two characters per word.
	TypeText RegisterType = iota

	// TypeInt16 is a single-word two's-complement signed integer.
	TypeInt16

	// TypeUint16 is a single-word unsigned integer.
	TypeUint16

	// TypeInt32 is a two-word two's-complement signed integer.
	TypeInt32

	// TypeUint32 is a two-word unsigned integer.
	TypeUint32

	// TypeEnum is a single-word integer drawn from a named value set.
	TypeEnum
)

// String returns a human-readable name for the register type.
func (t RegisterType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt16:
		return "int16"
	case TypeUint16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeEnum:
		return "enum"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// WordOrder specifies how a two-word value is composed from the words
// delivered by the transport.
type WordOrder int

const (
	// HighWordFirst composes (word0 << 16) | word1.
	HighWordFirst WordOrder = iota

	// LowWordFirst composes (word1 << 16) | word0.
	LowWordFirst
)

// Descriptor describes one holding register: where it lives, how its raw
// words are interpreted, and how the decoded value is scaled into
// engineering units.
//
// Descriptors are built once at startup as static configuration, validated
// eagerly, and never mutated. They are safe to share between sessions.
type Descriptor struct {
	// Address is the register offset in the device's holding register space.
	Address uint16

	// Type is the logical type of the register contents.
	Type RegisterType

	// Words is the register length in 16-bit words. Must be 1 for 16-bit
	// and enum types, 2 for 32-bit types, and >= 1 for text.
	Words uint16

	// Order is the word order for two-word values. Reads honour it; writes
	// are always issued high word first.
	Order WordOrder

	// Scale multiplies the raw numeric value. Required (non-zero) for
	// numeric types; ignored for text and enum registers.
	Scale float64

	// Offset is added after scaling.
	Offset float64

	// Unit is an informational label ("V", "W", "%").
	Unit string

	// Enum is the value set for TypeEnum registers. Required for TypeEnum,
	// forbidden otherwise.
	Enum *Enum

	// Verify enables a post-write read-back check for this register.
	// Leave false for transient command registers that do not read back.
	Verify bool
}

// Validate checks the descriptor for configuration errors.
//
// All failures wrap ErrInvalidDescriptor. Validation runs at startup,
// before any polling begins, so a bad descriptor is fatal rather than a
// per-cycle error.
func (d Descriptor) Validate() error {
	switch d.Type {
	case TypeText:
		if d.Words < 1 {
			return fmt.Errorf("%w: text register 0x%04X needs at least 1 word", ErrInvalidDescriptor, d.Address)
		}
	case TypeInt16, TypeUint16:
		if d.Words != 1 {
			return fmt.Errorf("%w: %s register 0x%04X must be 1 word, got %d", ErrInvalidDescriptor, d.Type, d.Address, d.Words)
		}
	case TypeInt32, TypeUint32:
		if d.Words != 2 {
			return fmt.Errorf("%w: %s register 0x%04X must be 2 words, got %d", ErrInvalidDescriptor, d.Type, d.Address, d.Words)
		}
	case TypeEnum:
		if d.Words != 1 {
			return fmt.Errorf("%w: enum register 0x%04X must be 1 word, got %d", ErrInvalidDescriptor, d.Address, d.Words)
		}
	default:
		return fmt.Errorf("%w: register 0x%04X has unknown type %d", ErrInvalidDescriptor, d.Address, int(d.Type))
	}

	if d.isNumeric() && d.Scale == 0 {
		return fmt.Errorf("%w: %s register 0x%04X has zero scale", ErrInvalidDescriptor, d.Type, d.Address)
	}

	if d.Type == TypeEnum {
		if d.Enum == nil {
			return fmt.Errorf("%w: enum register 0x%04X has no value set", ErrInvalidDescriptor, d.Address)
		}
		if err := d.Enum.Validate(); err != nil {
			return fmt.Errorf("%w: enum register 0x%04X: %w", ErrInvalidDescriptor, d.Address, err)
		}
	} else if d.Enum != nil {
		return fmt.Errorf("%w: %s register 0x%04X carries an enum value set", ErrInvalidDescriptor, d.Type, d.Address)
	}

	return nil
}

// isNumeric reports whether scale/offset post-processing applies.
func (d Descriptor) isNumeric() bool {
	switch d.Type {
	case TypeInt16, TypeUint16, TypeInt32, TypeUint32:
		return true
	default:
		return false
	}
}
