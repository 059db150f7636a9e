package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

// minimalYAML is a config that relies on defaults for everything it omits.
const minimalYAML = `
devices:
  - name: classic
    host: 10.0.0.5
    port: 502
    unit: 1
    profile: midnite_classic
control:
  enabled: false
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Poller.Period != 10 {
		t.Errorf("poller.period = %d, want 10", cfg.Poller.Period)
	}
	if cfg.InfluxDB.Enabled || cfg.MQTT.Enabled {
		t.Error("telemetry sinks should default to disabled")
	}
	if cfg.MQTT.ClientID != "conextmon" {
		t.Errorf("mqtt.client_id = %q, want conextmon", cfg.MQTT.ClientID)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
logging:
  level: debug
  format: text
devices:
  - name: classic
    host: 10.0.0.5
    port: 502
    unit: 1
    profile: midnite_classic
  - name: conext
    host: 10.0.0.6
    port: 503
    unit: 10
    profile: conext_xw
poller:
  period: 30
control:
  enabled: true
  inverter_device: conext
  charge_controller_device: classic
  settle_delay: 120
  sell_battery_voltage: 56.0
  sell_voltage: 55.6
  sell_stop_voltage: 47.0
  max_sell_current: 15.0
  soc_low: 50
  soc_high: 85
  power_buffer: 400
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Poller.GetPeriod() != 30*time.Second {
		t.Errorf("GetPeriod() = %v, want 30s", cfg.Poller.GetPeriod())
	}
	if cfg.Control.GetSettleDelay() != 120*time.Second {
		t.Errorf("GetSettleDelay() = %v, want 120s", cfg.Control.GetSettleDelay())
	}
	if cfg.Control.MaxSellCurrent != 15.0 {
		t.Errorf("control.max_sell_current = %v, want 15", cfg.Control.MaxSellCurrent)
	}
	if len(cfg.Devices) != 2 || cfg.Devices[1].GetTimeout() != 0 {
		t.Errorf("devices = %+v", cfg.Devices)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONEXTMON_LOG_LEVEL", "warn")
	t.Setenv("CONEXTMON_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("CONEXTMON_MQTT_PASSWORD", "secret-pass")
	t.Setenv("CONEXTMON_POLL_PERIOD", "20")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want warn from env", cfg.Logging.Level)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("influxdb.token = %q, want env value", cfg.InfluxDB.Token)
	}
	if cfg.MQTT.Password != "secret-pass" {
		t.Errorf("mqtt.password = %q, want env value", cfg.MQTT.Password)
	}
	if cfg.Poller.Period != 20 {
		t.Errorf("poller.period = %d, want 20 from env", cfg.Poller.Period)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "devices: [unterminated")); err == nil {
		t.Error("Load() expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"default config is valid",
			func(c *Config) {},
			"",
		},
		{
			"no devices",
			func(c *Config) { c.Devices = nil; c.Control.Enabled = false },
			"at least one device",
		},
		{
			"device without host",
			func(c *Config) { c.Devices[0].Host = "" },
			"host is required",
		},
		{
			"port out of range",
			func(c *Config) { c.Devices[0].Port = 70000 },
			"port must be between",
		},
		{
			"unit out of range",
			func(c *Config) { c.Devices[0].Unit = 300 },
			"unit must be between",
		},
		{
			"duplicate device names",
			func(c *Config) { c.Devices[1].Name = c.Devices[0].Name },
			"duplicates",
		},
		{
			"zero poll period",
			func(c *Config) { c.Poller.Period = 0 },
			"poller.period",
		},
		{
			"control references unknown device",
			func(c *Config) { c.Control.InverterDevice = "ghost" },
			"inverter_device",
		},
		{
			"soc thresholds inverted",
			func(c *Config) { c.Control.SOCLow, c.Control.SOCHigh = 90, 60 },
			"soc_low",
		},
		{
			"recovery weekday out of range",
			func(c *Config) { c.Control.Recovery.Enabled = true; c.Control.Recovery.Weekday = 9 },
			"recovery.weekday",
		},
		{
			"influxdb enabled without bucket",
			func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "" },
			"influxdb.bucket",
		},
		{
			"mqtt enabled without broker",
			func(c *Config) { c.MQTT.Enabled = true; c.MQTT.BrokerURL = "" },
			"mqtt.broker_url",
		},
		{
			"mqtt qos out of range",
			func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 },
			"mqtt.qos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// A config with several problems reports all of them at once.
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Devices[0].Host = ""
	cfg.Poller.Period = 0
	cfg.Control.SOCLow, cfg.Control.SOCHigh = 90, 60

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"host is required", "poller.period", "soc_low"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err.Error(), want)
		}
	}
}
