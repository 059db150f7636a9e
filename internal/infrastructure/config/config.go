package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the monitor.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Devices  []DeviceConfig `yaml:"devices"`
	Poller   PollerConfig   `yaml:"poller"`
	Control  ControlConfig  `yaml:"control"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DeviceConfig describes one physical field device.
type DeviceConfig struct {
	// Name keys the device in snapshots, telemetry, and control config.
	Name string `yaml:"name"`

	// Host and Port locate the Modbus TCP endpoint or gateway.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Unit is the Modbus unit (slave) identifier.
	Unit int `yaml:"unit"`

	// Profile selects the register map ("midnite_classic", "conext_xw").
	Profile string `yaml:"profile"`

	// Timeout bounds each register exchange, in seconds.
	Timeout int `yaml:"timeout"`
}

// GetTimeout returns the device transport timeout as a Duration.
func (d DeviceConfig) GetTimeout() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// PollerConfig contains poll loop settings.
type PollerConfig struct {
	// Period is the poll period in seconds. Ticks align to wall-clock
	// period boundaries.
	Period int `yaml:"period"`
}

// GetPeriod returns the poll period as a Duration.
func (p PollerConfig) GetPeriod() time.Duration {
	return time.Duration(p.Period) * time.Second
}

// ControlConfig contains the inverter state machine tunables. Thresholds
// here changed across deployments; the defaults are the latest revision's
// values, not universal constants.
type ControlConfig struct {
	Enabled bool `yaml:"enabled"`

	// InverterDevice and ChargeControllerDevice name entries in Devices.
	InverterDevice         string `yaml:"inverter_device"`
	ChargeControllerDevice string `yaml:"charge_controller_device"`

	// SettleDelay is the post-transition hysteresis before selling, seconds.
	SettleDelay int `yaml:"settle_delay"`

	// SellBatteryVoltage is the voltage above which selling starts.
	SellBatteryVoltage float64 `yaml:"sell_battery_voltage"`

	// SellVoltage / SellStopVoltage are the grid support voltage setpoints
	// while selling and while not selling.
	SellVoltage     float64 `yaml:"sell_voltage"`
	SellStopVoltage float64 `yaml:"sell_stop_voltage"`

	// MaxSellCurrent is the sell current limit while selling, amps.
	MaxSellCurrent float64 `yaml:"max_sell_current"`

	// SOCLow / SOCHigh are the battery state-of-charge thresholds for
	// stopping and resuming grid support, percent.
	SOCLow  float64 `yaml:"soc_low"`
	SOCHigh float64 `yaml:"soc_high"`

	// PowerBuffer is the load-versus-output safety margin, watts.
	PowerBuffer float64 `yaml:"power_buffer"`

	// Recovery is the scheduled battery recovery window.
	Recovery RecoveryConfig `yaml:"recovery"`
}

// GetSettleDelay returns the settle delay as a Duration.
func (c ControlConfig) GetSettleDelay() time.Duration {
	return time.Duration(c.SettleDelay) * time.Second
}

// RecoveryConfig describes the weekly window during which the controller
// forces a full recharge regardless of state of charge.
type RecoveryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Weekday is 0 (Sunday) through 6 (Saturday).
	Weekday int `yaml:"weekday"`

	// StartHour (inclusive) and EndHour (exclusive) bound the window,
	// local time, 0-23.
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// InfluxDBConfig contains InfluxDB v2 connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MQTTConfig contains MQTT broker settings for the republish channel.
type MQTTConfig struct {
	Enabled        bool            `yaml:"enabled"`
	BrokerURL      string          `yaml:"broker_url"`
	ClientID       string          `yaml:"client_id"`
	Username       string          `yaml:"username"`
	Password       string          `yaml:"password"`
	QoS            int             `yaml:"qos"`
	KeepAlive      int             `yaml:"keep_alive"`
	ConnectTimeout int             `yaml:"connect_timeout"`
	Republish      RepublishConfig `yaml:"republish"`
}

// GetKeepAlive returns the keep-alive interval as a Duration.
func (m MQTTConfig) GetKeepAlive() time.Duration {
	return time.Duration(m.KeepAlive) * time.Second
}

// GetConnectTimeout returns the connect timeout as a Duration.
func (m MQTTConfig) GetConnectTimeout() time.Duration {
	return time.Duration(m.ConnectTimeout) * time.Second
}

// RepublishConfig names one snapshot field to forward over MQTT each cycle.
type RepublishConfig struct {
	Device string `yaml:"device"`
	Field  string `yaml:"field"`
	Topic  string `yaml:"topic"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CONEXTMON_SECTION_KEY
// For example: CONEXTMON_INFLUXDB_TOKEN, CONEXTMON_MQTT_PASSWORD
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the reference deployment's values:
// a Midnite Classic on unit 1 and a Conext XW gateway on unit 10, polled
// every 10 seconds.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Devices: []DeviceConfig{
			{
				Name:    "midnite_classic",
				Host:    "192.168.1.10",
				Port:    502,
				Unit:    1,
				Profile: "midnite_classic",
				Timeout: 5,
			},
			{
				Name:    "conext_xw",
				Host:    "192.168.2.227",
				Port:    503,
				Unit:    10,
				Profile: "conext_xw",
				Timeout: 5,
			},
		},
		Poller: PollerConfig{
			Period: 10,
		},
		Control: ControlConfig{
			Enabled:                true,
			InverterDevice:         "conext_xw",
			ChargeControllerDevice: "midnite_classic",
			SettleDelay:            240,
			SellBatteryVoltage:     56.0,
			SellVoltage:            55.6,
			SellStopVoltage:        47.0,
			MaxSellCurrent:         20.0,
			SOCLow:                 60,
			SOCHigh:                90,
			PowerBuffer:            500,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			URL:           "http://localhost:8086",
			Org:           "home",
			Bucket:        "energy",
			BatchSize:     100,
			FlushInterval: 10,
		},
		MQTT: MQTTConfig{
			Enabled:        false,
			BrokerURL:      "tcp://localhost:1883",
			ClientID:       "conextmon",
			QoS:            0,
			KeepAlive:      30,
			ConnectTimeout: 10,
			Republish: RepublishConfig{
				Device: "conext_xw",
				Field:  "grid_output_power",
				Topic:  "solar/grid_power",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides. Secrets and
// endpoint addresses are overridable so config files stay credential-free.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONEXTMON_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("CONEXTMON_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("CONEXTMON_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("CONEXTMON_MQTT_BROKER_URL"); v != "" {
		cfg.MQTT.BrokerURL = v
	}
	if v := os.Getenv("CONEXTMON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("CONEXTMON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	if v := os.Getenv("CONEXTMON_POLL_PERIOD"); v != "" {
		if period, err := strconv.Atoi(v); err == nil {
			cfg.Poller.Period = period
		}
	}
}

// Validate checks the configuration for errors. All problems are collected
// into one error so a broken config surfaces completely on first run.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Devices) == 0 {
		errs = append(errs, "at least one device is required")
	}

	names := make(map[string]bool, len(c.Devices))
	for i, dev := range c.Devices {
		prefix := fmt.Sprintf("devices[%d]", i)
		if dev.Name == "" {
			errs = append(errs, prefix+".name is required")
		} else if names[dev.Name] {
			errs = append(errs, prefix+".name duplicates "+dev.Name)
		}
		names[dev.Name] = true

		if dev.Host == "" {
			errs = append(errs, prefix+".host is required")
		}
		if dev.Port < 1 || dev.Port > 65535 {
			errs = append(errs, prefix+".port must be between 1 and 65535")
		}
		if dev.Unit < 0 || dev.Unit > 247 {
			errs = append(errs, prefix+".unit must be between 0 and 247")
		}
		if dev.Profile == "" {
			errs = append(errs, prefix+".profile is required")
		}
		if dev.Timeout < 0 {
			errs = append(errs, prefix+".timeout must not be negative")
		}
	}

	if c.Poller.Period < 1 {
		errs = append(errs, "poller.period must be at least 1 second")
	}

	if c.Control.Enabled {
		if !names[c.Control.InverterDevice] {
			errs = append(errs, "control.inverter_device must name a configured device")
		}
		if !names[c.Control.ChargeControllerDevice] {
			errs = append(errs, "control.charge_controller_device must name a configured device")
		}
		if c.Control.SettleDelay < 0 {
			errs = append(errs, "control.settle_delay must not be negative")
		}
		if c.Control.SOCLow >= c.Control.SOCHigh {
			errs = append(errs, "control.soc_low must be below control.soc_high")
		}
		if c.Control.PowerBuffer < 0 {
			errs = append(errs, "control.power_buffer must not be negative")
		}
		if c.Control.Recovery.Enabled {
			if c.Control.Recovery.Weekday < 0 || c.Control.Recovery.Weekday > 6 {
				errs = append(errs, "control.recovery.weekday must be between 0 and 6")
			}
			if c.Control.Recovery.StartHour < 0 || c.Control.Recovery.StartHour > 23 {
				errs = append(errs, "control.recovery.start_hour must be between 0 and 23")
			}
			if c.Control.Recovery.EndHour < 0 || c.Control.Recovery.EndHour > 23 {
				errs = append(errs, "control.recovery.end_hour must be between 0 and 23")
			}
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.BrokerURL == "" {
			errs = append(errs, "mqtt.broker_url is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
