package control

// State is the controller's process state. It is deliberately independent
// of any register enumeration: it describes what this process last decided,
// not what a device reports.
type State int

const (
	// StateUnknown holds until the first cycle with readable inverter
	// setpoints resolves the real state.
	StateUnknown State = iota

	// StateWaitingForCharge has grid support disabled while the battery
	// recharges.
	StateWaitingForCharge

	// StateInvert has grid support enabled with selling stopped.
	StateInvert

	// StateInvertSell has grid support enabled and exports to the grid.
	StateInvertSell
)

// String returns the telemetry label for the state.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateWaitingForCharge:
		return "waiting_for_charge"
	case StateInvert:
		return "invert"
	case StateInvertSell:
		return "invert_sell"
	default:
		return "invalid"
	}
}
