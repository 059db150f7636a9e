// Package poller drives the periodic read-everything cycle against the
// configured field devices.
//
// # Cycle shape
//
// On each wall-clock-aligned tick the manager, for each device in order:
// opens the device session, reads every register in its profile, assembles
// a Snapshot, and closes the session (always, even on failure). A failure
// anywhere in one device's read leaves that device's Snapshot nil and
// never affects other devices or the cycle itself.
//
//	tick ──► device A: open ─ read* ─ close ─┐
//	         device B: open ─ read* ─ close ─┼──► observers (in order)
//	                                          │      telemetry publisher
//	                                          └──►   inverter controller
//
// Observers receive the aggregate {device name -> Snapshot} synchronously
// in registration order; their errors are logged and swallowed. Cycles are
// strictly serialized: a cycle that overruns the period drops the missed
// tick instead of overlapping.
//
// The design favours availability over per-cycle consistency: device
// unreachability and decode errors cost one device one cycle, never the
// process.
package poller
