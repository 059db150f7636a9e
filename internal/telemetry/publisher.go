package telemetry

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/poller"
)

// PointWriter is the time-series sink surface. Satisfied by
// *influxdb.Client; nil means the sink is disabled (a valid no-op mode).
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time)
}

// MessagePublisher is the message-bus surface for republishing. Satisfied
// by *mqtt.Client; nil means republishing is disabled.
type MessagePublisher interface {
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// Logger is the minimal structured logging surface the publisher uses.
// May be nil.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Republish names one snapshot field to forward over MQTT each cycle, for
// consumption by an unrelated external controller.
type Republish struct {
	Device string
	Field  string
	Topic  string
	QoS    byte
}

// Publisher forwards each cycle's snapshots to the time-series sink and
// optionally republishes one value over MQTT. It is registered as the
// first observer so telemetry lands even when a control decision fails.
//
// Both sinks are fire and forget: InfluxDB writes go through the
// non-blocking write API, and MQTT failures are logged and swallowed. A
// slow or failing sink never delays the next poll tick.
type Publisher struct {
	points    PointWriter
	messages  MessagePublisher
	units     map[string]byte
	republish Republish
	logger    Logger
}

// NewPublisher builds a publisher. units maps device names to their Modbus
// unit identifiers for the point tags; either sink may be nil.
func NewPublisher(points PointWriter, messages MessagePublisher, units map[string]byte,
	republish Republish, logger Logger) *Publisher {

	return &Publisher{
		points:    points,
		messages:  messages,
		units:     units,
		republish: republish,
		logger:    logger,
	}
}

// Name implements poller.Observer.
func (p *Publisher) Name() string {
	return "telemetry"
}

// Observe implements poller.Observer: one point per present snapshot,
// measurement named after the device, tagged with its Modbus unit. Absent
// snapshots are skipped. Observe never returns an error.
func (p *Publisher) Observe(snapshots map[string]poller.Snapshot) error {
	if p.points != nil {
		for device, snap := range snapshots {
			if snap == nil {
				continue
			}
			tags := map[string]string{
				"modbus_id": strconv.Itoa(int(p.units[device])),
			}
			p.points.WritePoint(device, tags, map[string]interface{}(snap))
		}
	}

	p.republishValue(snapshots)
	return nil
}

// RecordTransition implements the controller's recorder: each state change
// lands as one control_state point.
func (p *Publisher) RecordTransition(from, to string, at time.Time) {
	if p.points == nil {
		return
	}
	p.points.WritePointWithTime("control_state", nil, map[string]interface{}{
		"state": to,
		"from":  from,
	}, at)
}

// republishValue forwards the configured field as a plain number string.
// Failures are logged and swallowed; republishing is best-effort.
func (p *Publisher) republishValue(snapshots map[string]poller.Snapshot) {
	if p.messages == nil || p.republish.Topic == "" {
		return
	}
	snap := snapshots[p.republish.Device]
	if snap == nil {
		return
	}
	value, ok := snap[p.republish.Field]
	if !ok {
		p.logWarn("republish field missing from snapshot",
			"device", p.republish.Device, "field", p.republish.Field)
		return
	}

	if err := p.messages.PublishString(p.republish.Topic, formatValue(value), p.republish.QoS, false); err != nil {
		p.logWarn("republish failed", "topic", p.republish.Topic, "error", err)
	}
}

// formatValue renders a snapshot value as a plain scalar payload.
func formatValue(value any) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (p *Publisher) logWarn(msg string, keysAndValues ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, keysAndValues...)
	}
}
