package modbus

import "fmt"

// Field names one register within a device profile.
type Field struct {
	Name       string
	Descriptor Descriptor
}

// Profile is the full readable register surface of one device model: an
// ordered list of named descriptors.
//
// One Profile instance exists per device model (not per physical unit).
// It is built once at startup, validated eagerly, and shared read-only.
type Profile struct {
	// Model identifies the device model ("midnite_classic", "conext_xw").
	Model string

	// Fields lists the registers in poll order.
	Fields []Field
}

// Validate checks every descriptor and field name in the profile.
// A failure here is a configuration error and fatal at startup.
func (p Profile) Validate() error {
	if p.Model == "" {
		return fmt.Errorf("%w: profile has no model name", ErrInvalidDescriptor)
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("%w: profile %s has no fields", ErrInvalidDescriptor, p.Model)
	}

	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: profile %s has an unnamed field at 0x%04X",
				ErrInvalidDescriptor, p.Model, f.Descriptor.Address)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: profile %s has duplicate field %q",
				ErrInvalidDescriptor, p.Model, f.Name)
		}
		seen[f.Name] = true

		if err := f.Descriptor.Validate(); err != nil {
			return fmt.Errorf("profile %s field %q: %w", p.Model, f.Name, err)
		}
	}
	return nil
}

// Lookup returns the descriptor for a field name.
func (p Profile) Lookup(name string) (Descriptor, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Descriptor, true
		}
	}
	return Descriptor{}, false
}

// Names returns the field names in poll order.
func (p Profile) Names() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}
