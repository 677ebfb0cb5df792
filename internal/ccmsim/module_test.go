package ccmsim

import (
	"context"
	"testing"
	"time"

	"github.com/ccmlink-io/ccmlink/pkg/at"
)

func exec(t *testing.T, m *Module, line, want string) {
	t.Helper()
	if got := m.Exec(context.Background(), line); got != want {
		t.Errorf("Exec(%q) = %q, want %q", line, got, want)
	}
}

func TestModuleProvisioningSequence(t *testing.T) {
	m := NewModule(nil)

	exec(t, m, "AT+CONNECT?", "OK 0 DISCONNECTED\r\n")
	exec(t, m, "AT+WIFI?", "OK 0 WIFI DISCONNECTED\r\n")
	exec(t, m, "AT+CONF EndPoint=example.amazonaws.com", "OK\r\n")
	exec(t, m, "AT+CONF SSID=lab", "OK\r\n")
	exec(t, m, "AT+CONF Passphrase=hunter2", "OK\r\n")
	exec(t, m, "AT+WIFI?", "OK 1 WIFI CONNECTED\r\n")
	exec(t, m, "AT+CONNECT", "OK 1 CONNECTED\r\n")
	exec(t, m, "AT+CONNECT?", "OK 1 CONNECTED\r\n")
	exec(t, m, "AT+CONF Topic1=data", "OK\r\n")
	exec(t, m, "AT+SUBSCRIBE1", "OK\r\n")
	exec(t, m, "AT+EVENT?", "OK\r\n")
}

func TestModuleConnectRequiresWiFi(t *testing.T) {
	m := NewModule(nil)
	exec(t, m, "AT+CONNECT", "ERR 14 UNABLE TO CONNECT\r\n")
}

func TestModuleSubscribeRequiresTopic(t *testing.T) {
	m := NewModule(nil)
	exec(t, m, "AT+SUBSCRIBE1", "ERR 3 NO TOPIC\r\n")
}

func TestModuleMessageLifecycle(t *testing.T) {
	m := NewModule(nil)
	m.InjectMessage("hello")

	exec(t, m, "AT+EVENT?", "OK 1 1 MSG\r\n")
	exec(t, m, "AT+GET1", "OK hello\r\n")
	exec(t, m, "AT+EVENT?", "OK\r\n")
	exec(t, m, "AT+GET1", "OK\r\n")
}

func TestModuleOTALifecycle(t *testing.T) {
	m := NewModule(nil)
	m.OfferOTA()

	exec(t, m, "AT+EVENT?", "OK 5 1 OTA\r\n")
	exec(t, m, "AT+OTA ACCEPT", "OK\r\n")
	exec(t, m, "AT+EVENT?", "OK 5 4 OTA\r\n")
	exec(t, m, "AT+OTA APPLY", "OK\r\n")
	exec(t, m, "AT+EVENT?", "OK 2 0 STARTUP\r\n")
	exec(t, m, "AT+EVENT?", "OK\r\n")
}

func TestModuleDisconnectDropsBothLinks(t *testing.T) {
	m := NewModule(nil)
	exec(t, m, "AT+CONF SSID=lab", "OK\r\n")
	exec(t, m, "AT+CONNECT", "OK 1 CONNECTED\r\n")
	exec(t, m, "AT+DISCONNECT", "OK\r\n")
	exec(t, m, "AT+WIFI?", "OK 0 WIFI DISCONNECTED\r\n")
	exec(t, m, "AT+CONNECT?", "OK 0 DISCONNECTED\r\n")
}

func TestModuleRejectsGarbage(t *testing.T) {
	m := NewModule(nil)
	exec(t, m, "AT+NOPE", "ERR 1 UNKNOWN COMMAND\r\n")
	exec(t, m, "AT+CONF novalue", "ERR 2 MALFORMED CONF\r\n")
}

// TestServerSession runs the host agent's own engine against the simulator
// over TCP, end to end.
func TestServerSession(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", NewModule(nil))
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	transport, err := at.DialTCP(srv.Addr().String())
	if err != nil {
		t.Fatalf("DialTCP() error: %v", err)
	}
	eng := at.NewEngine(transport, 5*time.Second)

	if eng.CloudConnected(ctx) {
		t.Error("fresh module reported cloud-connected")
	}
	eng.Send(ctx, at.SetSSID("lab"), "")
	if !eng.WiFiConnected(ctx) {
		t.Error("module not Wi-Fi connected after SSID set")
	}
	if out := eng.Send(ctx, at.CmdConnect, at.ReplyConnected); !out.OK {
		t.Errorf("connect failed: %+v", out)
	}
	if !eng.CloudConnected(ctx) {
		t.Error("module not cloud-connected after connect")
	}
}
