package modbus

import "fmt"

// EnumValue pairs one protocol-defined integer with its documented name.
type EnumValue struct {
	Value uint16
	Label string
}

// Enum is a closed set of named integer values for a register.
//
// Labels are the protocol's documented member names ("Absorb",
// "AC_Pass_Through") and are the canonical form surfaced to observers;
// raw integers never leave the codec.
type Enum struct {
	// Name identifies the enumeration in errors and logs.
	Name string

	// Values is the defined value set, in protocol document order.
	Values []EnumValue

	// UpperByteFallback retries a failed lookup against value >> 8.
	// Some devices pack two states into one word and document only the
	// upper byte; enable this per enumeration, never globally.
	UpperByteFallback bool
}

// Label resolves a raw register value to its member name.
//
// When UpperByteFallback is set and the raw value has no member, the lookup
// is retried with the upper byte before failing with ErrUnknownEnumValue.
func (e *Enum) Label(raw uint16) (string, error) {
	if label, ok := e.lookup(raw); ok {
		return label, nil
	}
	if e.UpperByteFallback {
		if label, ok := e.lookup(raw >> 8); ok {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w: %s has no member %d", ErrUnknownEnumValue, e.Name, raw)
}

// Value resolves a member name back to its raw register value. Used when
// encoding enum setpoints for writes.
func (e *Enum) Value(label string) (uint16, error) {
	for _, v := range e.Values {
		if v.Label == label {
			return v.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: %s has no member %q", ErrUnknownEnumValue, e.Name, label)
}

// Validate checks the enumeration for configuration errors.
func (e *Enum) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("enumeration has no name")
	}
	if len(e.Values) == 0 {
		return fmt.Errorf("enumeration %s has no values", e.Name)
	}
	seenValue := make(map[uint16]bool, len(e.Values))
	seenLabel := make(map[string]bool, len(e.Values))
	for _, v := range e.Values {
		if v.Label == "" {
			return fmt.Errorf("enumeration %s has an unlabelled value %d", e.Name, v.Value)
		}
		if seenValue[v.Value] {
			return fmt.Errorf("enumeration %s has duplicate value %d", e.Name, v.Value)
		}
		if seenLabel[v.Label] {
			return fmt.Errorf("enumeration %s has duplicate label %q", e.Name, v.Label)
		}
		seenValue[v.Value] = true
		seenLabel[v.Label] = true
	}
	return nil
}

func (e *Enum) lookup(raw uint16) (string, bool) {
	for _, v := range e.Values {
		if v.Value == raw {
			return v.Label, true
		}
	}
	return "", false
}
