// Package influxdb provides the InfluxDB v2 telemetry sink.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched point writing, and health monitoring. One snapshot
// point per device lands here each poll cycle, plus one point per control
// state transition.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "home",
//	    Bucket:  "energy",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePoint("conext_xw",
//	    map[string]string{"modbus_id": "10"},
//	    map[string]interface{}{"v_batt": 54.2})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Writes are non-blocking; batch errors arrive via the SetOnError
// callback. Connection and health check errors are returned directly.
// A disabled sink is a valid mode: Connect returns ErrDisabled and the
// caller runs without telemetry.
package influxdb
