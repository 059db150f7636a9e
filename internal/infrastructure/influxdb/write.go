package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint writes one point with full control over tags and fields.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Failures surface through the SetOnError callback.
//
// Example:
//
//	client.WritePoint("conext_xw",
//	    map[string]string{"modbus_id": "10"},
//	    map[string]interface{}{"v_batt": 54.2, "battery_soc": int64(91)})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes one point with a specific timestamp. Used when
// the event time is not "now" (e.g., a state transition recorded after the
// fact).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
