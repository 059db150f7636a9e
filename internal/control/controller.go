package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/poller"
)

// Snapshot field names the controller reads. These are the profile field
// names of the two devices, fixed here so guard code reads plainly.
const (
	fieldBatterySOC     = "battery_soc"
	fieldBatteryVoltage = "v_batt"
	fieldChargeStage    = "combo_charge_stage"

	fieldGridSupport        = "grid_support"
	fieldGridSupportVoltage = "grid_support_voltage"
	fieldMaxSellAmps        = "maximum_sell_amps"
	fieldInverterStatus     = "inverter_status"
	fieldLoadACPower        = "load_ac_power"
	fieldInvertDCPower      = "invert_dc_power"
)

// Enum labels the guards compare against.
const (
	labelEnable        = "Enable"
	labelDisable       = "Disable"
	labelAbsorb        = "Absorb"
	labelACPassThrough = "AC_Pass_Through"
)

// Config holds the controller's tunables. Every threshold that changed
// across deployments is a named parameter here, not a constant; the config
// package supplies the current deployment's defaults.
type Config struct {
	// ChargeControllerDevice and InverterDevice are the snapshot keys of
	// the two devices.
	ChargeControllerDevice string
	InverterDevice         string

	// SettleDelay is the minimum time after a transition before selling
	// may start.
	SettleDelay time.Duration

	// SellBatteryVoltage is the battery voltage above which selling starts.
	SellBatteryVoltage float64

	// SellVoltage is the grid support voltage setpoint while selling.
	SellVoltage float64

	// SellStopVoltage is the grid support voltage setpoint when not selling.
	SellStopVoltage float64

	// MaxSellCurrent is the sell current setpoint while selling, in amps.
	MaxSellCurrent float64

	// SOCLow is the state of charge below which grid support shuts off.
	SOCLow float64

	// SOCHigh is the state of charge above which grid support re-enables.
	SOCHigh float64

	// PowerBuffer is the safety margin, in watts, between inverter output
	// and load below which selling stops.
	PowerBuffer float64

	// RecoveryWindow reports whether the scheduled battery recovery window
	// is active. The schedule is site-specific, so it is a predicate, not
	// calendar logic. Nil means never active.
	RecoveryWindow func(time.Time) bool
}

// SetpointWriter is the inverter session surface the controller writes
// through. Satisfied by *modbus.Session.
type SetpointWriter interface {
	Open() error
	Close() error
	Write(d modbus.Descriptor, value any) error
}

// TransitionRecorder receives state transitions for telemetry. May be nil.
type TransitionRecorder interface {
	RecordTransition(from, to string, at time.Time)
}

// Logger is the minimal structured logging surface the controller uses.
// May be nil.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// setpoint is one register write in a transition batch.
type setpoint struct {
	desc  modbus.Descriptor
	value any
}

// Controller is the inverter state machine. It observes each poll cycle's
// snapshots and, when a guard fires, writes setpoints back to the inverter
// inside one session bracket.
//
// All state is in memory; after a restart the first cycle re-detects the
// state from the live setpoint registers.
type Controller struct {
	cfg      Config
	inverter SetpointWriter
	recorder TransitionRecorder
	logger   Logger

	// now is swappable for tests.
	now func() time.Time

	// Setpoint descriptors, resolved once at construction.
	gridSupportReg modbus.Descriptor
	sellVoltageReg modbus.Descriptor
	sellAmpsReg    modbus.Descriptor

	// Transitions read-modify-write the state, so it sits behind a mutex
	// even though poll cycles are serialized.
	mu             sync.Mutex
	state          State
	lastTransition time.Time
}

// NewController builds a controller and resolves the setpoint descriptors
// from the inverter's profile. A missing setpoint register is a
// configuration error, fatal at startup.
func NewController(cfg Config, inverter SetpointWriter, inverterProfile modbus.Profile,
	recorder TransitionRecorder, logger Logger) (*Controller, error) {

	if cfg.InverterDevice == "" || cfg.ChargeControllerDevice == "" {
		return nil, fmt.Errorf("%w: device names are required", ErrInvalidConfig)
	}
	if inverter == nil {
		return nil, fmt.Errorf("%w: inverter session is required", ErrInvalidConfig)
	}
	if cfg.SOCLow >= cfg.SOCHigh {
		return nil, fmt.Errorf("%w: soc_low %.0f must be below soc_high %.0f",
			ErrInvalidConfig, cfg.SOCLow, cfg.SOCHigh)
	}

	c := &Controller{
		cfg:      cfg,
		inverter: inverter,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		state:    StateUnknown,
	}

	for _, reg := range []struct {
		name string
		dst  *modbus.Descriptor
	}{
		{fieldGridSupport, &c.gridSupportReg},
		{fieldGridSupportVoltage, &c.sellVoltageReg},
		{fieldMaxSellAmps, &c.sellAmpsReg},
	} {
		d, ok := inverterProfile.Lookup(reg.name)
		if !ok {
			return nil, fmt.Errorf("%w: inverter profile %s has no %q register",
				ErrInvalidConfig, inverterProfile.Model, reg.name)
		}
		*reg.dst = d
	}

	return c, nil
}

// Name implements poller.Observer.
func (c *Controller) Name() string {
	return "inverter-control"
}

// State returns the current control state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastTransition returns the time of the last state change.
func (c *Controller) LastTransition() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTransition
}

// Observe implements poller.Observer. It evaluates the guards in fixed
// order against the evolving state; a guard that cannot be evaluated is
// logged and the remaining guards still run. Observe itself never returns
// an error: a bad cycle costs one decision, not the poll loop.
func (c *Controller) Observe(snapshots map[string]poller.Snapshot) error {
	inverter := snapshots[c.cfg.InverterDevice]
	charger := snapshots[c.cfg.ChargeControllerDevice]
	if inverter == nil || charger == nil {
		c.logDebug("skipping control cycle, snapshot missing",
			"inverter", inverter != nil, "charge_controller", charger != nil)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnknown {
		c.detectInitialState(inverter)
		if c.state == StateUnknown {
			return nil
		}
	}

	guards := []struct {
		name string
		eval func(inverter, charger poller.Snapshot) error
	}{
		{"sell_start", c.guardSellStart},
		{"sell_stop", c.guardSellStop},
		{"charge_needed", c.guardChargeNeeded},
		{"charge_complete", c.guardChargeComplete},
	}
	for _, g := range guards {
		if err := g.eval(inverter, charger); err != nil {
			c.logError("guard evaluation failed", err, "guard", g.name)
		}
	}
	return nil
}

// detectInitialState resolves StateUnknown from the live inverter
// setpoints. It issues no writes: the hardware is already in the state we
// are adopting.
func (c *Controller) detectInitialState(inverter poller.Snapshot) {
	gridSupport, err := fieldString(inverter, fieldGridSupport)
	if err != nil {
		c.logWarn("cannot detect initial state", "error", err)
		return
	}
	maxSellAmps, err := fieldFloat(inverter, fieldMaxSellAmps)
	if err != nil {
		c.logWarn("cannot detect initial state", "error", err)
		return
	}

	var detected State
	switch {
	case gridSupport == labelDisable:
		detected = StateWaitingForCharge
	case maxSellAmps == 0:
		detected = StateInvert
	case maxSellAmps > 0:
		detected = StateInvertSell
	default:
		c.logWarn("initial state anomaly, staying unknown",
			"grid_support", gridSupport, "maximum_sell_amps", maxSellAmps)
		return
	}

	now := c.now()
	c.logInfo("initial state detected", "state", detected.String(),
		"grid_support", gridSupport, "maximum_sell_amps", maxSellAmps)
	c.state = detected
	c.lastTransition = now
	if c.recorder != nil {
		c.recorder.RecordTransition(StateUnknown.String(), detected.String(), now)
	}
}

// guardSellStart starts selling once the battery has been full enough for
// the settle delay: Invert -> InvertSell.
func (c *Controller) guardSellStart(_, charger poller.Snapshot) error {
	if c.state != StateInvert {
		return nil
	}
	vBatt, err := fieldFloat(charger, fieldBatteryVoltage)
	if err != nil {
		return err
	}
	if vBatt <= c.cfg.SellBatteryVoltage {
		return nil
	}
	if c.now().Sub(c.lastTransition) <= c.cfg.SettleDelay {
		return nil
	}
	return c.transition(StateInvertSell, []setpoint{
		{c.sellVoltageReg, c.cfg.SellVoltage},
		{c.sellAmpsReg, c.cfg.MaxSellCurrent},
	})
}

// guardSellStop stops selling when the load no longer covers the inverter
// output (less the safety buffer) or the inverter has fallen back to
// pass-through: InvertSell -> Invert. It runs every cycle, independent of
// guardSellStart, so the two may fire in the same or adjacent cycles.
func (c *Controller) guardSellStop(inverter, _ poller.Snapshot) error {
	if c.state != StateInvertSell {
		return nil
	}
	loadPower, err := fieldFloat(inverter, fieldLoadACPower)
	if err != nil {
		return err
	}
	invertPower, err := fieldFloat(inverter, fieldInvertDCPower)
	if err != nil {
		return err
	}
	status, err := fieldString(inverter, fieldInverterStatus)
	if err != nil {
		return err
	}

	if loadPower >= invertPower-c.cfg.PowerBuffer && status != labelACPassThrough {
		return nil
	}
	return c.transition(StateInvert, []setpoint{
		{c.sellVoltageReg, c.cfg.SellStopVoltage},
		{c.sellAmpsReg, 0.0},
	})
}

// guardChargeNeeded disables grid support when the battery runs low or the
// scheduled recovery window is active: any state -> WaitingForCharge.
func (c *Controller) guardChargeNeeded(inverter, charger poller.Snapshot) error {
	gridSupport, err := fieldString(inverter, fieldGridSupport)
	if err != nil {
		return err
	}
	if gridSupport != labelEnable {
		return nil
	}
	soc, err := fieldFloat(charger, fieldBatterySOC)
	if err != nil {
		return err
	}
	if soc >= c.cfg.SOCLow && !c.recoveryActive() {
		return nil
	}
	return c.transition(StateWaitingForCharge, []setpoint{
		{c.gridSupportReg, labelDisable},
	})
}

// guardChargeComplete re-enables grid support once the charge controller
// reaches absorb with a high state of charge, outside the recovery window:
// WaitingForCharge -> Invert.
func (c *Controller) guardChargeComplete(inverter, charger poller.Snapshot) error {
	if c.state != StateWaitingForCharge {
		return nil
	}
	gridSupport, err := fieldString(inverter, fieldGridSupport)
	if err != nil {
		return err
	}
	if gridSupport != labelDisable {
		return nil
	}
	stage, err := fieldString(charger, fieldChargeStage)
	if err != nil {
		return err
	}
	soc, err := fieldFloat(charger, fieldBatterySOC)
	if err != nil {
		return err
	}

	if stage != labelAbsorb || soc <= c.cfg.SOCHigh || c.recoveryActive() {
		return nil
	}
	return c.transition(StateInvert, []setpoint{
		{c.gridSupportReg, labelEnable},
		{c.sellVoltageReg, c.cfg.SellStopVoltage},
		{c.sellAmpsReg, 0.0},
	})
}

// transition applies a firing guard's setpoint batch inside one session
// bracket and commits the state change.
//
// If the session cannot be opened, no writes were possible and the
// transition is abandoned until a later cycle. Once the bracket is open,
// individual write failures are logged and the remaining writes still run:
// partial application is accepted over failing the poll loop, and the next
// cycles re-evaluate against the hardware's real state.
func (c *Controller) transition(to State, writes []setpoint) error {
	from := c.state

	if err := c.inverter.Open(); err != nil {
		return fmt.Errorf("opening inverter session: %w", err)
	}
	defer func() {
		if err := c.inverter.Close(); err != nil {
			c.logError("inverter session close failed", err)
		}
	}()

	for _, w := range writes {
		if err := c.inverter.Write(w.desc, w.value); err != nil {
			c.logError("setpoint write failed", err,
				"register", fmt.Sprintf("0x%04X", w.desc.Address), "value", w.value)
		}
	}

	now := c.now()
	c.state = to
	c.lastTransition = now
	c.logInfo("state transition", "from", from.String(), "to", to.String())
	if c.recorder != nil {
		c.recorder.RecordTransition(from.String(), to.String(), now)
	}
	return nil
}

func (c *Controller) recoveryActive() bool {
	return c.cfg.RecoveryWindow != nil && c.cfg.RecoveryWindow(c.now())
}

// fieldFloat extracts a numeric snapshot field. Unscaled registers decode
// as int64 and scaled ones as float64; both widen to float64 here.
func fieldFloat(snap poller.Snapshot, name string) (float64, error) {
	value, ok := snap[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s is %T, want numeric", ErrFieldType, name, value)
	}
}

// fieldString extracts an enum label or text snapshot field.
func fieldString(snap poller.Snapshot, name string) (string, error) {
	value, ok := snap[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrFieldType, name, value)
	}
	return s, nil
}

func (c *Controller) logDebug(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, keysAndValues...)
	}
}

func (c *Controller) logInfo(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Info(msg, keysAndValues...)
	}
}

func (c *Controller) logWarn(msg string, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, keysAndValues...)
	}
}

func (c *Controller) logError(msg string, err error, keysAndValues ...any) {
	if c.logger != nil {
		c.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}
