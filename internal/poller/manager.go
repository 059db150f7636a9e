package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"
)

// Snapshot maps field names to decoded values for one complete poll of one
// device. A nil Snapshot means the device could not be read this cycle.
// Snapshots are superseded wholesale each cycle; there is no merging.
type Snapshot map[string]any

// Session is the device access surface the manager needs. Satisfied by
// *modbus.Session; tests inject fakes.
type Session interface {
	Open() error
	Close() error
	Read(d modbus.Descriptor) (any, error)
}

// Device couples a named endpoint with its register profile.
type Device struct {
	// Name keys the device's Snapshot in observer callbacks and telemetry.
	Name string

	// Unit is the Modbus unit identifier, surfaced as a telemetry tag.
	Unit byte

	// Session owns the device's connection.
	Session Session

	// Profile lists the registers read each cycle.
	Profile modbus.Profile
}

// Observer receives the aggregate {device name -> Snapshot} of each cycle.
// Observers run synchronously in registration order; an error from one is
// logged and never stops later observers or the next cycle.
type Observer interface {
	Name() string
	Observe(snapshots map[string]Snapshot) error
}

// Logger is the minimal structured logging surface the manager uses.
// Compatible with logging.Logger and slog.Logger. May be nil.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Metrics is a point-in-time copy of the manager's counters.
type Metrics struct {
	// Cycles is the number of completed poll cycles.
	Cycles uint64

	// ConsecutiveFailures counts failed polls per device since its last
	// successful snapshot.
	ConsecutiveFailures map[string]uint64
}

// Manager polls every configured device on a wall-clock-aligned period and
// fans the resulting snapshots out to registered observers.
//
// Cycles run synchronously in one goroutine: a cycle that overruns the
// period causes the next tick to be dropped, never queued, so at most one
// cycle executes at a time.
type Manager struct {
	devices   []Device
	period    time.Duration
	observers []Observer
	logger    Logger

	// Shutdown coordination (stopOnce prevents double-close panics).
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	mu       sync.Mutex
	cycles   uint64
	failures map[string]uint64
}

// NewManager validates the device list and builds a manager.
//
// Every profile is validated here, before any polling: a malformed
// descriptor is a configuration error and fatal at startup.
func NewManager(devices []Device, period time.Duration, logger Logger) (*Manager, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no devices configured", modbus.ErrInvalidDescriptor)
	}
	if period < time.Second {
		return nil, fmt.Errorf("%w: poll period %v is below 1s", modbus.ErrInvalidDescriptor, period)
	}

	seen := make(map[string]bool, len(devices))
	for _, dev := range devices {
		if dev.Name == "" {
			return nil, fmt.Errorf("%w: device with empty name", modbus.ErrInvalidDescriptor)
		}
		if seen[dev.Name] {
			return nil, fmt.Errorf("%w: duplicate device name %q", modbus.ErrInvalidDescriptor, dev.Name)
		}
		seen[dev.Name] = true
		if dev.Session == nil {
			return nil, fmt.Errorf("%w: device %q has no session", modbus.ErrInvalidDescriptor, dev.Name)
		}
		if err := dev.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("device %q: %w", dev.Name, err)
		}
	}

	return &Manager{
		devices:  devices,
		period:   period,
		logger:   logger,
		done:     make(chan struct{}),
		failures: make(map[string]uint64, len(devices)),
	}, nil
}

// Register adds an observer. Must be called before Start; observers run in
// registration order.
func (m *Manager) Register(obs Observer) {
	m.observers = append(m.observers, obs)
}

// Start begins the poll loop. Every cycle fires on a wall-clock period
// boundary (a 10s period fires at :00, :10, :20, ...).
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.run(ctx)
}

// Stop shuts the poll loop down and waits for an in-flight cycle to finish.
// Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}

// Metrics returns a copy of the manager's counters.
func (m *Manager) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := make(map[string]uint64, len(m.failures))
	for name, n := range m.failures {
		failures[name] = n
	}
	return Metrics{Cycles: m.cycles, ConsecutiveFailures: failures}
}

// run drives the tick loop. The timer is re-armed to the next wall-clock
// period boundary after every cycle, so cycle duration never accumulates
// as a phase offset and an overrunning cycle skips straight to the first
// boundary after it finishes. Cycles execute inline, never concurrently.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	timer := time.NewTimer(time.Until(nextTick(time.Now(), m.period)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-timer.C:
			m.runCycle()
			timer.Reset(time.Until(nextTick(time.Now(), m.period)))
		}
	}
}

// nextTick returns the first period boundary after now.
func nextTick(now time.Time, period time.Duration) time.Time {
	return now.Truncate(period).Add(period)
}

// runCycle polls every device and notifies every observer. Device failures
// abort only that device's snapshot; observer errors are logged and the
// remaining observers still run.
func (m *Manager) runCycle() {
	snapshots := make(map[string]Snapshot, len(m.devices))

	for _, dev := range m.devices {
		snap, err := m.readDevice(dev)
		if err != nil {
			snapshots[dev.Name] = nil
			m.recordFailure(dev.Name)
			m.logError("device poll failed", err, "device", dev.Name)
			continue
		}
		snapshots[dev.Name] = snap
		m.recordSuccess(dev.Name)
	}

	for _, obs := range m.observers {
		if err := obs.Observe(snapshots); err != nil {
			m.logError("observer failed", err, "observer", obs.Name())
		}
	}

	m.mu.Lock()
	m.cycles++
	m.mu.Unlock()
}

// readDevice reads the device's full profile inside one Open/Close
// bracket. The session is always closed, even on failure.
func (m *Manager) readDevice(dev Device) (Snapshot, error) {
	if err := dev.Session.Open(); err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	defer func() {
		if err := dev.Session.Close(); err != nil {
			m.logError("session close failed", err, "device", dev.Name)
		}
	}()

	snap := make(Snapshot, len(dev.Profile.Fields))
	for _, f := range dev.Profile.Fields {
		value, err := dev.Session.Read(f.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		snap[f.Name] = value
	}
	return snap, nil
}

func (m *Manager) recordFailure(device string) {
	m.mu.Lock()
	m.failures[device]++
	m.mu.Unlock()
}

func (m *Manager) recordSuccess(device string) {
	m.mu.Lock()
	m.failures[device] = 0
	m.mu.Unlock()
}

// logError logs an error message if a logger is set.
func (m *Manager) logError(msg string, err error, keysAndValues ...any) {
	if m.logger != nil {
		m.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}
