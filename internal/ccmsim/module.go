package ccmsim

import (
	"context"
	"strings"
	"sync"

	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/mqtt"
)

// Event descriptors the simulated firmware places on its queue.
const (
	eventMessage     = "OK 1 1 MSG\r\n"
	eventOTAOffered  = "OK 5 1 OTA\r\n"
	eventOTAVerified = "OK 5 4 OTA\r\n"
	eventStartup     = "OK 2 0 STARTUP\r\n"
)

// Module simulates the CCM firmware's AT front end: a configuration store,
// Wi-Fi and cloud link state, an event queue and a message inbox. A real MQTT
// broker can be bridged in so GET1/SUBSCRIBE1 move actual messages.
type Module struct {
	mu     sync.Mutex
	conf   map[string]string
	wifi   bool
	cloud  bool
	events []string
	inbox  []string

	bridge mqtt.Client
	logger log.Logger
}

// NewModule creates a simulated module. bridge may be nil; the module then
// runs standalone with a local inbox only.
func NewModule(bridge mqtt.Client) *Module {
	return &Module{
		conf:   map[string]string{},
		bridge: bridge,
		logger: log.WithName("ccmsim"),
	}
}

// Exec evaluates one AT command line (trailing newline already stripped) and
// returns the full reply including its terminator.
func (m *Module) Exec(ctx context.Context, line string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case strings.HasPrefix(line, "AT+CONF "):
		return m.execConf(strings.TrimPrefix(line, "AT+CONF "))
	case line == "AT+CONNECT?":
		if m.cloud {
			return "OK 1 CONNECTED\r\n"
		}
		return "OK 0 DISCONNECTED\r\n"
	case line == "AT+WIFI?":
		if m.wifi {
			return "OK 1 WIFI CONNECTED\r\n"
		}
		return "OK 0 WIFI DISCONNECTED\r\n"
	case line == "AT+CONNECT":
		return m.execConnect(ctx)
	case line == "AT+DISCONNECT":
		m.wifi = false
		m.cloud = false
		return "OK\r\n"
	case line == "AT+CLOUD_SYNC":
		// The staging backend migrates the endpoint out of band; the sim
		// just flips the link up after acknowledging.
		m.cloud = m.wifi
		return "OK\r\n"
	case line == "AT+CONFMODE":
		// Companion-app onboarding: pretend the operator finishes instantly.
		m.wifi = true
		return "OK\r\n"
	case line == "AT+SUBSCRIBE1":
		return m.execSubscribe(ctx)
	case line == "AT+EVENT?":
		if len(m.events) == 0 {
			return "OK\r\n"
		}
		ev := m.events[0]
		m.events = m.events[1:]
		return ev
	case line == "AT+GET1":
		if len(m.inbox) == 0 {
			return "OK\r\n"
		}
		msg := m.inbox[0]
		m.inbox = m.inbox[1:]
		return "OK " + msg + "\r\n"
	case line == "AT+OTA ACCEPT":
		// Download and verification are instantaneous in the sim; the
		// verified event shows up on the next queue poll.
		m.events = append(m.events, eventOTAVerified)
		return "OK\r\n"
	case line == "AT+OTA APPLY":
		// Applying firmware restarts the module, which greets the host with
		// a startup event.
		m.events = append(m.events, eventStartup)
		return "OK\r\n"
	}
	m.logger.Warn("Unrecognized command", "line", line)
	return "ERR 1 UNKNOWN COMMAND\r\n"
}

func (m *Module) execConf(kv string) string {
	key, value, found := strings.Cut(kv, "=")
	if !found || key == "" {
		return "ERR 2 MALFORMED CONF\r\n"
	}
	m.conf[key] = value
	if key == "SSID" || key == "Passphrase" {
		// Credentials onboarding: association comes up once an SSID is set.
		m.wifi = m.conf["SSID"] != ""
	}
	return "OK\r\n"
}

func (m *Module) execConnect(ctx context.Context) string {
	if !m.wifi {
		return "ERR 14 UNABLE TO CONNECT\r\n"
	}
	if m.bridge != nil {
		if err := m.bridge.AwaitConnection(ctx); err != nil {
			m.logger.Error(err, "Broker connection not up")
			return "ERR 14 UNABLE TO CONNECT\r\n"
		}
	}
	m.cloud = true
	return "OK 1 CONNECTED\r\n"
}

func (m *Module) execSubscribe(ctx context.Context) string {
	topic := m.conf["Topic1"]
	if topic == "" {
		return "ERR 3 NO TOPIC\r\n"
	}
	if m.bridge != nil {
		if err := m.bridge.Subscribe(ctx, topic, 1, m.onMessage); err != nil {
			m.logger.Error(err, "Broker subscribe failed", "topic", topic)
			return "ERR 4 SUBSCRIBE FAILED\r\n"
		}
	}
	return "OK\r\n"
}

// onMessage is the bridge callback: store the payload and raise the
// message-available event, mirroring what the firmware does on a PUBLISH.
func (m *Module) onMessage(ctx context.Context, topic string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = append(m.inbox, string(payload))
	m.events = append(m.events, eventMessage)
	m.logger.Info("Message queued", "topic", topic, "bytes", len(payload))
}

// OfferOTA queues an OTA-offered event, as the cloud would after staging a
// new image for the device.
func (m *Module) OfferOTA() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventOTAOffered)
}

// InjectMessage places a payload in the inbox with its event, bypassing the
// broker. Used by tests and by the sim when no bridge is configured.
func (m *Module) InjectMessage(payload string) {
	m.onMessage(context.Background(), "", []byte(payload))
}

// PendingEvents reports how many events are queued.
func (m *Module) PendingEvents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
