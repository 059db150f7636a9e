// conextmon polls a Midnite Classic charge controller and a Schneider
// Conext XW inverter/charger over Modbus TCP, publishes their register
// snapshots to InfluxDB, republishes grid export power over MQTT, and runs
// the grid-sell control loop against the inverter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/control"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/devices"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/config"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/influxdb"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/logging"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/mqtt"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/poller"
	"github.com/joshwearssocks/midnite-conext-monitor/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

var (
	configFlag  = flag.String("config", "", "path to configuration file")
	versionFlag = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("conextmon %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting conextmon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Telemetry sink (optional)
	var pointWriter telemetry.PointWriter
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case err == nil:
		defer func() {
			log.Info("closing influxdb client")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing influxdb client", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(writeErr error) {
			log.Error("influxdb async write failed", "error", writeErr)
		})
		pointWriter = influxClient
		log.Info("influxdb connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("influxdb disabled, running without telemetry sink")
	default:
		return fmt.Errorf("connecting to influxdb: %w", err)
	}

	// Republish channel (optional)
	var messagePublisher telemetry.MessagePublisher
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	switch {
	case err == nil:
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("closing mqtt client")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing mqtt client", "error", closeErr)
			}
		}()
		messagePublisher = mqttClient
		log.Info("mqtt connected", "broker", cfg.MQTT.BrokerURL)
	case errors.Is(err, mqtt.ErrDisabled):
		log.Info("mqtt disabled, running without republish channel")
	default:
		return fmt.Errorf("connecting to mqtt: %w", err)
	}

	// Build devices from config. Profile validation happens inside
	// NewManager; an unknown profile key or bad descriptor is fatal here,
	// before any polling.
	pollDevices := make([]poller.Device, 0, len(cfg.Devices))
	units := make(map[string]byte, len(cfg.Devices))
	profiles := make(map[string]modbus.Profile, len(cfg.Devices))
	for _, devCfg := range cfg.Devices {
		profile, profileErr := devices.ProfileByName(devCfg.Profile)
		if profileErr != nil {
			return fmt.Errorf("device %q: %w", devCfg.Name, profileErr)
		}
		session := modbus.NewSession(modbus.SessionConfig{
			Name:    devCfg.Name,
			Host:    devCfg.Host,
			Port:    devCfg.Port,
			Unit:    byte(devCfg.Unit),
			Timeout: devCfg.GetTimeout(),
		})
		pollDevices = append(pollDevices, poller.Device{
			Name:    devCfg.Name,
			Unit:    byte(devCfg.Unit),
			Session: session,
			Profile: profile,
		})
		units[devCfg.Name] = byte(devCfg.Unit)
		profiles[devCfg.Name] = profile
	}

	manager, err := poller.NewManager(pollDevices, cfg.Poller.GetPeriod(), log.With("component", "poller"))
	if err != nil {
		return fmt.Errorf("building poller: %w", err)
	}

	// Telemetry publishes first so a control error never blocks data.
	publisher := telemetry.NewPublisher(pointWriter, messagePublisher, units,
		telemetry.Republish{
			Device: cfg.MQTT.Republish.Device,
			Field:  cfg.MQTT.Republish.Field,
			Topic:  cfg.MQTT.Republish.Topic,
			QoS:    byte(cfg.MQTT.QoS),
		},
		log.With("component", "telemetry"))
	manager.Register(publisher)

	if cfg.Control.Enabled {
		controller, ctrlErr := buildController(cfg, profiles, publisher, log)
		if ctrlErr != nil {
			return fmt.Errorf("building controller: %w", ctrlErr)
		}
		manager.Register(controller)
		log.Info("inverter control enabled",
			"inverter", cfg.Control.InverterDevice,
			"charge_controller", cfg.Control.ChargeControllerDevice,
			"settle_delay", cfg.Control.GetSettleDelay(),
		)
	} else {
		log.Info("inverter control disabled, monitoring only")
	}

	manager.Start(ctx)
	log.Info("poll loop started", "period", cfg.Poller.GetPeriod(), "devices", len(pollDevices))

	<-ctx.Done()
	log.Info("shutdown signal received, stopping poll loop")
	manager.Stop()

	log.Info("conextmon stopped")
	return nil
}

// buildController wires the state machine to its own inverter session.
// The controller's session is separate from the poller's: each owns its
// open/close brackets and they never interleave, since observers run after
// the poll reads complete.
func buildController(cfg *config.Config, profiles map[string]modbus.Profile,
	recorder control.TransitionRecorder, log *logging.Logger) (*control.Controller, error) {

	var inverterCfg *config.DeviceConfig
	for i := range cfg.Devices {
		if cfg.Devices[i].Name == cfg.Control.InverterDevice {
			inverterCfg = &cfg.Devices[i]
			break
		}
	}
	if inverterCfg == nil {
		return nil, fmt.Errorf("control.inverter_device %q is not a configured device", cfg.Control.InverterDevice)
	}

	session := modbus.NewSession(modbus.SessionConfig{
		Name:    inverterCfg.Name,
		Host:    inverterCfg.Host,
		Port:    inverterCfg.Port,
		Unit:    byte(inverterCfg.Unit),
		Timeout: inverterCfg.GetTimeout(),
	})

	controlCfg := control.Config{
		InverterDevice:         cfg.Control.InverterDevice,
		ChargeControllerDevice: cfg.Control.ChargeControllerDevice,
		SettleDelay:            cfg.Control.GetSettleDelay(),
		SellBatteryVoltage:     cfg.Control.SellBatteryVoltage,
		SellVoltage:            cfg.Control.SellVoltage,
		SellStopVoltage:        cfg.Control.SellStopVoltage,
		MaxSellCurrent:         cfg.Control.MaxSellCurrent,
		SOCLow:                 cfg.Control.SOCLow,
		SOCHigh:                cfg.Control.SOCHigh,
		PowerBuffer:            cfg.Control.PowerBuffer,
	}
	if cfg.Control.Recovery.Enabled {
		controlCfg.RecoveryWindow = control.WeekdayWindow(
			time.Weekday(cfg.Control.Recovery.Weekday),
			cfg.Control.Recovery.StartHour,
			cfg.Control.Recovery.EndHour,
		)
	}

	return control.NewController(controlCfg, session,
		profiles[cfg.Control.InverterDevice], recorder,
		log.With("component", "control"))
}

// getConfigPath returns the configuration file path. Precedence: the
// -config flag, the CONEXTMON_CONFIG environment variable, then the default.
func getConfigPath() string {
	if *configFlag != "" {
		return *configFlag
	}
	if path := os.Getenv("CONEXTMON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
