package at

import "strings"

// Command is a single newline-terminated AT instruction for the CCM module.
// Commands are plain ASCII and carry no identity beyond their text.
type Command string

// Fixed command vocabulary understood by the module firmware.
const (
	// CmdConnect asks the module to establish the cloud connection.
	CmdConnect Command = "AT+CONNECT\n"
	// CmdConnectQuery queries the cloud connection state.
	CmdConnectQuery Command = "AT+CONNECT?\n"
	// CmdWiFiQuery queries the Wi-Fi association state.
	CmdWiFiQuery Command = "AT+WIFI?\n"
	// CmdDisconnect drops the module's current Wi-Fi association.
	CmdDisconnect Command = "AT+DISCONNECT\n"
	// CmdCloudSync asks the module to fetch its endpoint from the legacy
	// backend; the module migrates autonomously afterwards.
	CmdCloudSync Command = "AT+CLOUD_SYNC\n"
	// CmdConfMode puts the module into companion-app onboarding mode.
	CmdConfMode Command = "AT+CONFMODE\n"
	// CmdSubscribe1 subscribes the module to the topic stored in Topic1.
	CmdSubscribe1 Command = "AT+SUBSCRIBE1\n"
	// CmdEventQuery pops the next entry from the module's event queue.
	CmdEventQuery Command = "AT+EVENT?\n"
	// CmdGet1 retrieves the pending message on the Topic1 subscription.
	CmdGet1 Command = "AT+GET1\n"
	// CmdOTAAccept accepts an offered OTA image and starts the download.
	CmdOTAAccept Command = "AT+OTA ACCEPT\n"
	// CmdOTAApply applies a verified OTA image and swaps firmware.
	CmdOTAApply Command = "AT+OTA APPLY\n"
)

// SetSSID builds the Wi-Fi SSID configuration command.
func SetSSID(ssid string) Command {
	return Command("AT+CONF SSID=" + ssid + "\n")
}

// SetPassphrase builds the Wi-Fi passphrase configuration command.
func SetPassphrase(passphrase string) Command {
	return Command("AT+CONF Passphrase=" + passphrase + "\n")
}

// SetEndpoint builds the cloud endpoint configuration command.
func SetEndpoint(endpoint string) Command {
	return Command("AT+CONF EndPoint=" + endpoint + "\n")
}

// SetTopic1 builds the command storing the topic in the module's Topic1 slot.
func SetTopic1(topic string) Command {
	return Command("AT+CONF Topic1=" + topic + "\n")
}

// Name returns the command text up to the first '=' with the trailing
// newline removed. Configuration values (SSID, passphrase, endpoint) never
// appear in logs or metric labels.
func (c Command) Name() string {
	s := strings.TrimSuffix(string(c), "\n")
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i]
	}
	return s
}

// Replies the host matches exactly. The module terminates every reply with
// CRLF; the literals keep it so comparisons stay byte-exact.
const (
	// ReplyOK is the generic success marker, also returned by AT+EVENT?
	// when the event queue is empty.
	ReplyOK = "OK\r\n"
	// ReplyConnected is returned once the module holds a cloud connection.
	ReplyConnected = "OK 1 CONNECTED\r\n"
	// ReplyWiFiConnected is returned once the module is associated.
	ReplyWiFiConnected = "OK 1 WIFI CONNECTED\r\n"
)
