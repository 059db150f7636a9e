package devices

import (
	"fmt"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"
)

// Profile keys accepted in device configuration.
const (
	ProfileMidniteClassic = "midnite_classic"
	ProfileConextXW       = "conext_xw"
)

// ProfileByName returns the register profile for a configured profile key.
// Unknown keys are a configuration error, fatal at startup.
func ProfileByName(name string) (modbus.Profile, error) {
	switch name {
	case ProfileMidniteClassic:
		return MidniteClassic(), nil
	case ProfileConextXW:
		return ConextXW(), nil
	default:
		return modbus.Profile{}, fmt.Errorf("%w: unknown device profile %q",
			modbus.ErrInvalidDescriptor, name)
	}
}
