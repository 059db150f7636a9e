package mqtt

import (
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/joshwearssocks/midnite-conext-monitor/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// reconnectInitialDelay and reconnectMaxDelay bound the auto-reconnect backoff.
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// statusQoS is the QoS for status/LWT messages.
	statusQoS = 1
)

// Status payloads for the monitor's status topic.
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// statusTopic returns the retained status topic for a client.
func statusTopic(clientID string) string {
	return clientID + "/status"
}

// buildClientOptions creates paho MQTT options from config.
//
// This configures the broker URL, client ID, credentials (if provided),
// clean-session mode, keep-alive, and auto-reconnect with backoff.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Clean session - nothing is subscribed, so no broker state to keep.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitialDelay)
	opts.SetMaxReconnectInterval(reconnectMaxDelay)

	opts.SetConnectTimeout(cfg.GetConnectTimeout())
	opts.SetKeepAlive(cfg.GetKeepAlive())

	return opts
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The broker publishes the will if the monitor disconnects unexpectedly,
// so the external consumer of the republished value can distinguish a dead
// monitor from a steady reading.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	opts.SetWill(statusTopic(clientID), statusOffline, statusQoS, true)
}
