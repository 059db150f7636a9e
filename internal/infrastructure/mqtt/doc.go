// Package mqtt provides the publish-only MQTT channel for the monitor.
//
// This package manages:
//   - Connecting to the broker with automatic reconnection
//   - Publishing with QoS and timeout handling
//   - A retained status topic with Last Will for offline detection
//
// The monitor republishes one telemetry value per poll cycle (by default
// the inverter's grid output power) for an unrelated external controller.
// Nothing subscribes: there is no inbound message handling here.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishString("solar/grid_power", "1520", 0, false)
//
// Publish failures are returned to the caller; the telemetry layer logs
// and swallows them, since republishing is best-effort by design.
package mqtt
