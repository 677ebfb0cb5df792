package mqtt

import (
	"testing"

	"github.com/eclipse/paho.golang/paho"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"data", "data", true},
		{"data", "data/sub", false},
		{"devices/+/events", "devices/ccm1/events", true},
		{"devices/+/events", "devices/ccm1/state", false},
		{"devices/#", "devices/ccm1/events", true},
		{"#", "anything/at/all", true},
		{"devices/+", "devices", false},
	}
	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestClientConfigValidate(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	if err := (&ClientConfig{}).Validate(); err == nil {
		t.Error("accepted empty broker url")
	}
	if err := (&ClientConfig{BrokerURL: "ftp://x"}).Validate(); err == nil {
		t.Error("accepted unsupported scheme")
	}
}

func TestOnServerDisconnectWithoutProperties(t *testing.T) {
	// Brokers may send a bare DISCONNECT packet; the callback must not
	// assume the properties block is present.
	c := &pahoClient{}
	c.onServerDisconnect(&paho.Disconnect{ReasonCode: 0x8E})
	c.onServerDisconnect(&paho.Disconnect{
		ReasonCode: 0x9C,
		Properties: &paho.DisconnectProperties{ReasonString: "use another server"},
	})
}

func TestNewClientAppliesDefaults(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if cfg.KeepAlive != 60 {
		t.Errorf("KeepAlive default = %d, want 60", cfg.KeepAlive)
	}
	if cfg.ConnectTimeout == 0 {
		t.Error("ConnectTimeout default not applied")
	}
}
