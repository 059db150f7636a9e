package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker-dependent tests require a running Mosquitto at 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled:        true,
		BrokerURL:      "tcp://127.0.0.1:1883",
		ClientID:       "conextmon-test",
		QoS:            1,
		KeepAlive:      30,
		ConnectTimeout: 2,
	}
}

// connectOrSkip connects to the local test broker or skips the test.
func connectOrSkip(t *testing.T) *Client {
	t.Helper()
	client, err := Connect(testConfig())
	if err != nil {
		t.Skip("MQTT broker not available, skipping integration test")
	}
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := Connect(cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestClose(t *testing.T) {
	client := connectOrSkip(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on empty client error = %v, want nil", err)
	}
}

// =============================================================================
// HealthCheck Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublish(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	if err := client.Publish("conextmon-test/value", []byte("850"), 1, false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestPublishString(t *testing.T) {
	client := connectOrSkip(t)
	defer client.Close()

	if err := client.PublishString("conextmon-test/value", "54.2", 0, false); err != nil {
		t.Errorf("PublishString() error = %v", err)
	}
}

func TestPublishValidation(t *testing.T) {
	// Validation runs before any broker traffic, so an unconnected client
	// exercises these paths.
	client := &Client{}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 0, ErrInvalidTopic},
		{"invalid qos", "topic", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "topic", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
		{"not connected", "topic", []byte("x"), 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestStatusTopic(t *testing.T) {
	if got := statusTopic("conextmon"); got != "conextmon/status" {
		t.Errorf("statusTopic() = %q, want conextmon/status", got)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Username = "monitor"
	cfg.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || !strings.Contains(opts.Servers[0].String(), "127.0.0.1:1883") {
		t.Errorf("Servers = %v, want the configured broker", opts.Servers)
	}
	if opts.ClientID != "conextmon-test" {
		t.Errorf("ClientID = %q, want conextmon-test", opts.ClientID)
	}
	if opts.Username != "monitor" {
		t.Errorf("Username = %q, want monitor", opts.Username)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if !opts.CleanSession {
		t.Error("CleanSession = false, want true")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "conextmon")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "conextmon/status" {
		t.Errorf("WillTopic = %q, want conextmon/status", opts.WillTopic)
	}
	if string(opts.WillPayload) != statusOffline {
		t.Errorf("WillPayload = %q, want %q", opts.WillPayload, statusOffline)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
}
