package provision

import (
	"context"
	"time"

	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Onboarding gets the module onto a Wi-Fi network. Implementations are
// selected once from configuration; they are not switched at runtime.
type Onboarding interface {
	Onboard(ctx context.Context, cmd at.Commander) error
}

// CredentialsOnboarding pushes a known SSID and passphrase straight into the
// module's configuration. It does not wait for the association to come up;
// the connect step that follows surfaces any failure.
type CredentialsOnboarding struct {
	SSID       string
	Passphrase string
}

func (o *CredentialsOnboarding) Onboard(ctx context.Context, cmd at.Commander) error {
	log.Info("Pushing Wi-Fi credentials to the module", "ssid", o.SSID)
	cmd.Send(ctx, at.SetSSID(o.SSID), "")
	if o.Passphrase != "" {
		cmd.Send(ctx, at.SetPassphrase(o.Passphrase), "")
	}
	return nil
}

// CompanionAppOnboarding puts the module into its onboarding mode and waits
// for an operator to finish provisioning from the companion app. The wait is
// unbounded on purpose, it blocks on human action; ctx cancellation is the
// only other way out.
type CompanionAppOnboarding struct {
	PollInterval time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func (o *CompanionAppOnboarding) Onboard(ctx context.Context, cmd at.Commander) error {
	logger := log.WithName("provision")
	logger.Info("Entering onboarding mode, waiting for the companion app",
		"pollInterval", o.PollInterval)
	cmd.Send(ctx, at.CmdConfMode, "")

	sleep := o.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	for {
		if cmd.WiFiConnected(ctx) {
			logger.Info("Wi-Fi onboarding completed by the companion app")
			return nil
		}
		if err := sleep(ctx, o.PollInterval); err != nil {
			return err
		}
	}
}
