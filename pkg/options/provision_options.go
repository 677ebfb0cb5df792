package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ProvisionOptions)(nil)

// Flow names for --provision.flow.
const (
	FlowAWS    = "aws"
	FlowLegacy = "legacy"
)

// Onboarding strategy names for --provision.onboarding.
const (
	OnboardingCredentials  = "credentials"
	OnboardingCompanionApp = "companion-app"
)

// ProvisionOptions configures the connectivity provisioning flow. The flow
// and onboarding strategy used to be compile-time switches in the reference
// firmware host; here they are resolved once at startup.
type ProvisionOptions struct {
	// Flow selects the cloud flow: "aws" (direct endpoint) or "legacy"
	// (staging connect + cloud sync, endpoint migrated by the backend).
	Flow string `json:"flow" mapstructure:"flow"`

	// Onboarding selects how Wi-Fi credentials reach the module:
	// "credentials" pushes SSID/passphrase over AT commands,
	// "companion-app" puts the module in onboarding mode and waits for the
	// operator to finish provisioning from the companion app.
	Onboarding string `json:"onboarding" mapstructure:"onboarding"`

	SSID       string `json:"ssid" mapstructure:"ssid"`
	Passphrase string `json:"passphrase" mapstructure:"passphrase"`
	Endpoint   string `json:"endpoint" mapstructure:"endpoint"`

	// Topic is the MQTT topic stored in the module's Topic1 slot.
	Topic string `json:"topic" mapstructure:"topic"`

	// ReconfigureWiFi drops the module's existing Wi-Fi association first so
	// new credentials can be applied.
	ReconfigureWiFi bool `json:"reconfigure-wifi" mapstructure:"reconfigure-wifi"`

	// WiFiPollInterval is the pause between Wi-Fi status queries while
	// waiting for companion-app onboarding.
	WiFiPollInterval time.Duration `json:"wifi-poll-interval" mapstructure:"wifi-poll-interval"`

	// MigrationDelay is how long the legacy flow waits before it starts
	// re-querying the cloud connection after AT+CLOUD_SYNC.
	MigrationDelay time.Duration `json:"migration-delay" mapstructure:"migration-delay"`
}

// NewProvisionOptions creates a ProvisionOptions object with default
// parameters matching the reference firmware host.
func NewProvisionOptions() *ProvisionOptions {
	return &ProvisionOptions{
		Flow:             FlowAWS,
		Onboarding:       OnboardingCredentials,
		Topic:            "data",
		WiFiPollInterval: 60 * time.Second,
		MigrationDelay:   120 * time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *ProvisionOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	switch o.Flow {
	case FlowAWS, FlowLegacy:
	default:
		errors = append(errors, fmt.Errorf("unknown provisioning flow %q", o.Flow))
	}

	switch o.Onboarding {
	case OnboardingCredentials:
		if o.SSID == "" {
			errors = append(errors, fmt.Errorf("provision.ssid is required for credentials onboarding"))
		}
	case OnboardingCompanionApp:
	default:
		errors = append(errors, fmt.Errorf("unknown onboarding strategy %q", o.Onboarding))
	}

	if o.Flow == FlowAWS && o.Endpoint == "" {
		errors = append(errors, fmt.Errorf("provision.endpoint is required for the aws flow"))
	}
	if o.Topic == "" {
		errors = append(errors, fmt.Errorf("provision.topic is required"))
	}
	if o.WiFiPollInterval <= 0 {
		errors = append(errors, fmt.Errorf("provision.wifi-poll-interval must be positive"))
	}

	return errors
}

// AddFlags adds flags for the provisioning flow to the specified FlagSet.
func (o *ProvisionOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Flow, "provision.flow", o.Flow, "Cloud flow: 'aws' or 'legacy'.")
	fs.StringVar(&o.Onboarding, "provision.onboarding", o.Onboarding, "Wi-Fi onboarding strategy: 'credentials' or 'companion-app'.")
	fs.StringVar(&o.SSID, "provision.ssid", o.SSID, "Wi-Fi SSID pushed to the module (credentials onboarding).")
	fs.StringVar(&o.Passphrase, "provision.passphrase", o.Passphrase, "Wi-Fi passphrase pushed to the module (credentials onboarding).")
	fs.StringVar(&o.Endpoint, "provision.endpoint", o.Endpoint, "AWS IoT endpoint stored in the module (aws flow).")
	fs.StringVar(&o.Topic, "provision.topic", o.Topic, "Topic stored in the module's Topic1 slot and subscribed to.")
	fs.BoolVar(&o.ReconfigureWiFi, "provision.reconfigure-wifi", o.ReconfigureWiFi, "Disconnect the module's current Wi-Fi before applying new credentials.")
	fs.DurationVar(&o.WiFiPollInterval, "provision.wifi-poll-interval", o.WiFiPollInterval, "Interval between Wi-Fi status polls during companion-app onboarding.")
	fs.DurationVar(&o.MigrationDelay, "provision.migration-delay", o.MigrationDelay, "Delay before the legacy flow re-queries cloud connectivity after AT+CLOUD_SYNC.")
}
