package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ccmlink-io/ccmlink/internal/hostagent/events"
	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// errFatalConnect marks a failed cloud connect. The agent must not retry:
// the module is left in whatever state the failed attempt produced and an
// operator has to intervene.
var errFatalConnect = errors.New("provision: cloud connect failed")

// IsFatalConnect reports whether err is a terminal cloud-connect failure.
func IsFatalConnect(err error) bool {
	return errors.Is(err, errFatalConnect)
}

// Provisioner drives the module from an unknown state to a subscribed cloud
// connection. It owns the transport exclusively while Run executes; the event
// machine takes over afterwards.
type Provisioner struct {
	opts   *options.ProvisionOptions
	cmd    at.Commander
	onb    Onboarding
	logger log.Logger

	// sleep is swapped out by tests so the legacy migration delay and the
	// Wi-Fi poll interval do not slow the suite down.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProvisioner selects the flow and onboarding strategy from opts. opts
// must already be validated.
func NewProvisioner(opts *options.ProvisionOptions, cmd at.Commander) *Provisioner {
	p := &Provisioner{
		opts:   opts,
		cmd:    cmd,
		logger: log.WithName("provision"),
		sleep:  sleepCtx,
	}
	switch opts.Onboarding {
	case options.OnboardingCompanionApp:
		p.onb = &CompanionAppOnboarding{PollInterval: opts.WiFiPollInterval, sleep: p.ctxSleep}
	default:
		p.onb = &CredentialsOnboarding{SSID: opts.SSID, Passphrase: opts.Passphrase}
	}
	return p
}

// Run executes the configured flow once. A nil return means the module is
// cloud-connected, subscribed to the configured topic and its event queue is
// drained. A non-nil return is terminal for the agent.
func (p *Provisioner) Run(ctx context.Context) error {
	// The disconnect comes before the cloud-status check on purpose: an
	// already connected module must be dropped so the new credentials get
	// applied instead of the flow short-circuiting on the old association.
	if p.opts.ReconfigureWiFi {
		p.logger.Info("Dropping existing Wi-Fi association before reconfiguring")
		p.cmd.Send(ctx, at.CmdDisconnect, "")
	}

	switch p.opts.Flow {
	case options.FlowLegacy:
		if err := p.runLegacy(ctx); err != nil {
			return err
		}
	default:
		if err := p.runAWS(ctx); err != nil {
			return err
		}
	}

	if err := p.configureTopic(ctx); err != nil {
		return err
	}
	return events.Drain(ctx, p.cmd)
}

// runAWS is the direct-endpoint flow. Re-running it against an already
// connected module is a no-op apart from one status query.
func (p *Provisioner) runAWS(ctx context.Context) error {
	if p.cmd.CloudConnected(ctx) {
		p.logger.Info("Module already cloud-connected, skipping provisioning")
		return nil
	}

	p.cmd.Send(ctx, at.SetEndpoint(p.opts.Endpoint), "")

	if err := p.ensureWiFi(ctx); err != nil {
		return err
	}

	// One attempt only. The reference host treats a failed connect as a
	// configuration problem an operator has to look at, not something retries
	// paper over.
	outcome := p.cmd.Send(ctx, at.CmdConnect, at.ReplyConnected)
	if !outcome.OK {
		if outcome.TimedOut {
			return fmt.Errorf("cloud connect timed out: %w", errFatalConnect)
		}
		return fmt.Errorf("cloud connect rejected (reply %q): %w", outcome.Body, errFatalConnect)
	}
	p.logger.Info("Module connected to cloud endpoint", "endpoint", p.opts.Endpoint)
	return nil
}

// runLegacy provisions through the staging backend: a generic connect plus a
// cloud-sync request, after which the backend migrates the module to its
// production endpoint. The migration has no completion signal, so after a
// fixed delay the flow spins on the cloud status until it comes up. Only ctx
// cancellation bounds the wait.
func (p *Provisioner) runLegacy(ctx context.Context) error {
	if p.cmd.CloudConnected(ctx) {
		p.logger.Info("Module already cloud-connected, skipping provisioning")
		return nil
	}

	if err := p.ensureWiFi(ctx); err != nil {
		return err
	}

	p.cmd.Send(ctx, at.CmdConnect, "")
	p.cmd.Send(ctx, at.CmdCloudSync, "")
	p.logger.Info("Cloud sync requested, waiting for the backend to migrate the module",
		"delay", p.opts.MigrationDelay)

	if err := p.sleep(ctx, p.opts.MigrationDelay); err != nil {
		return err
	}
	for !p.cmd.CloudConnected(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	p.logger.Info("Module migrated and cloud-connected")
	return nil
}

// ensureWiFi hands off to the onboarding strategy when the module has no
// Wi-Fi association.
func (p *Provisioner) ensureWiFi(ctx context.Context) error {
	if p.cmd.WiFiConnected(ctx) {
		return nil
	}
	return p.onb.Onboard(ctx, p.cmd)
}

func (p *Provisioner) configureTopic(ctx context.Context) error {
	p.cmd.Send(ctx, at.SetTopic1(p.opts.Topic), "")
	p.cmd.Send(ctx, at.CmdSubscribe1, "")
	p.logger.Info("Subscribed to topic", "topic", p.opts.Topic)
	return nil
}

func (p *Provisioner) ctxSleep(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
