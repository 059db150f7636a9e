// Package telemetry publishes poll-cycle snapshots and control-state
// transitions to the configured sinks.
//
// The publisher is a poller observer. Per cycle it writes one InfluxDB
// point per device that produced a snapshot (measurement = device name,
// tag modbus_id = unit) and republishes one configured field over MQTT as
// a plain number for an external consumer. State transitions from the
// controller land as control_state points.
//
// Both sinks are optional and best-effort: a nil sink is a no-op, InfluxDB
// writes are batched and non-blocking, and MQTT publish failures are
// logged and swallowed. Nothing here blocks the poll loop.
package telemetry
