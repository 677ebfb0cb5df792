package provision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// fakeCommander records every command and answers status queries from
// scripted sequences. Once a sequence runs out its last value repeats.
type fakeCommander struct {
	sent    []at.Command
	replies map[at.Command]at.Outcome

	cloud []bool
	wifi  []bool
}

func (f *fakeCommander) Send(ctx context.Context, cmd at.Command, expect string) at.Outcome {
	f.sent = append(f.sent, cmd)
	if out, ok := f.replies[cmd]; ok {
		return out
	}
	return at.Outcome{OK: true, Body: "OK\r\n"}
}

func shift(seq *[]bool) bool {
	if len(*seq) == 0 {
		return false
	}
	v := (*seq)[0]
	if len(*seq) > 1 {
		*seq = (*seq)[1:]
	}
	return v
}

func (f *fakeCommander) CloudConnected(ctx context.Context) bool { return shift(&f.cloud) }
func (f *fakeCommander) WiFiConnected(ctx context.Context) bool  { return shift(&f.wifi) }

func awsOpts() *options.ProvisionOptions {
	o := options.NewProvisionOptions()
	o.Endpoint = "example.iot.us-east-1.amazonaws.com"
	o.SSID = "lab"
	o.Passphrase = "hunter2"
	return o
}

func noSleep(p *Provisioner) {
	p.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
}

func TestRunAWSFullSequence(t *testing.T) {
	cmd := &fakeCommander{
		cloud: []bool{false},
		wifi:  []bool{false},
		replies: map[at.Command]at.Outcome{
			at.CmdConnect: {OK: true, Body: at.ReplyConnected},
		},
	}
	p := NewProvisioner(awsOpts(), cmd)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []at.Command{
		at.SetEndpoint("example.iot.us-east-1.amazonaws.com"),
		at.SetSSID("lab"),
		at.SetPassphrase("hunter2"),
		at.CmdConnect,
		at.SetTopic1("data"),
		at.CmdSubscribe1,
		at.CmdEventQuery,
	}
	if len(cmd.sent) != len(want) {
		t.Fatalf("sent %v, want %v", cmd.sent, want)
	}
	for i := range want {
		if cmd.sent[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, cmd.sent[i], want[i])
		}
	}
}

func TestRunAWSIdempotent(t *testing.T) {
	// Already connected: nothing but topic configuration and the drain.
	cmd := &fakeCommander{cloud: []bool{true}}
	p := NewProvisioner(awsOpts(), cmd)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []at.Command{at.SetTopic1("data"), at.CmdSubscribe1, at.CmdEventQuery}
	if len(cmd.sent) != len(want) {
		t.Fatalf("sent %v, want %v", cmd.sent, want)
	}
}

func TestRunAWSConnectFailureIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		outcome at.Outcome
	}{
		{"timeout", at.Outcome{TimedOut: true}},
		{"mismatched reply", at.Outcome{Body: "ERR 14 UNABLE TO CONNECT\r\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &fakeCommander{
				wifi:    []bool{true},
				replies: map[at.Command]at.Outcome{at.CmdConnect: tt.outcome},
			}
			p := NewProvisioner(awsOpts(), cmd)

			err := p.Run(context.Background())
			if !IsFatalConnect(err) {
				t.Fatalf("Run() = %v, want fatal connect error", err)
			}

			connects := 0
			for _, c := range cmd.sent {
				if c == at.CmdConnect {
					connects++
				}
			}
			if connects != 1 {
				t.Errorf("connect attempted %d times, want exactly 1", connects)
			}
			// No commands after the failed connect.
			if cmd.sent[len(cmd.sent)-1] != at.CmdConnect {
				t.Errorf("commands continued after fatal connect: %v", cmd.sent)
			}
		})
	}
}

func TestRunAWSSkipsOnboardingWhenWiFiUp(t *testing.T) {
	cmd := &fakeCommander{
		wifi: []bool{true},
		replies: map[at.Command]at.Outcome{
			at.CmdConnect: {OK: true, Body: at.ReplyConnected},
		},
	}
	p := NewProvisioner(awsOpts(), cmd)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, c := range cmd.sent {
		if c == at.SetSSID("lab") {
			t.Error("credentials pushed although Wi-Fi was already up")
		}
	}
}

func TestRunAWSReconfigureWiFi(t *testing.T) {
	opts := awsOpts()
	opts.ReconfigureWiFi = true
	// Even when the module still reports cloud-connected, the disconnect
	// must go out before the status query gets a chance to short-circuit.
	cmd := &fakeCommander{cloud: []bool{true}}
	p := NewProvisioner(opts, cmd)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(cmd.sent) == 0 || cmd.sent[0] != at.CmdDisconnect {
		t.Errorf("sent %v, want disconnect before any status query", cmd.sent)
	}
}

func TestRunReconfigureWiFiDropsConnectedModule(t *testing.T) {
	// A module that already holds a cloud connection must be dropped and
	// re-provisioned with the new credentials, not skipped over.
	opts := awsOpts()
	opts.ReconfigureWiFi = true
	cmd := &fakeCommander{
		// The disconnect tears both links down before the status query runs.
		cloud: []bool{false},
		wifi:  []bool{false},
		replies: map[at.Command]at.Outcome{
			at.CmdConnect: {OK: true, Body: at.ReplyConnected},
		},
	}
	p := NewProvisioner(opts, cmd)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []at.Command{
		at.CmdDisconnect,
		at.SetEndpoint("example.iot.us-east-1.amazonaws.com"),
		at.SetSSID("lab"),
		at.SetPassphrase("hunter2"),
		at.CmdConnect,
		at.SetTopic1("data"),
		at.CmdSubscribe1,
		at.CmdEventQuery,
	}
	if len(cmd.sent) != len(want) {
		t.Fatalf("sent %v, want %v", cmd.sent, want)
	}
	for i := range want {
		if cmd.sent[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, cmd.sent[i], want[i])
		}
	}
}

func TestRunLegacyWaitsForMigration(t *testing.T) {
	opts := awsOpts()
	opts.Flow = options.FlowLegacy
	cmd := &fakeCommander{
		cloud: []bool{false, false, false, true},
		wifi:  []bool{true},
	}
	p := NewProvisioner(opts, cmd)
	slept := 0
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept++
		if d != opts.MigrationDelay {
			t.Errorf("slept %v, want the migration delay %v", d, opts.MigrationDelay)
		}
		return nil
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if slept != 1 {
		t.Errorf("migration delay applied %d times, want 1", slept)
	}

	want := []at.Command{at.CmdConnect, at.CmdCloudSync, at.SetTopic1("data"), at.CmdSubscribe1, at.CmdEventQuery}
	if len(cmd.sent) != len(want) {
		t.Fatalf("sent %v, want %v", cmd.sent, want)
	}
}

func TestRunLegacyCancellable(t *testing.T) {
	opts := awsOpts()
	opts.Flow = options.FlowLegacy
	cmd := &fakeCommander{wifi: []bool{true}}
	p := NewProvisioner(opts, cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	noSleep(p)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestCompanionAppOnboarding(t *testing.T) {
	cmd := &fakeCommander{wifi: []bool{false, false, true}}
	onb := &CompanionAppOnboarding{
		PollInterval: time.Minute,
		sleep: func(ctx context.Context, d time.Duration) error {
			if d != time.Minute {
				t.Errorf("poll interval = %v, want 1m", d)
			}
			return nil
		},
	}

	if err := onb.Onboard(context.Background(), cmd); err != nil {
		t.Fatalf("Onboard() error: %v", err)
	}
	if len(cmd.sent) != 1 || cmd.sent[0] != at.CmdConfMode {
		t.Errorf("sent %v, want only the onboarding-mode command", cmd.sent)
	}
}

func TestCompanionAppOnboardingCancellable(t *testing.T) {
	cmd := &fakeCommander{}
	onb := &CompanionAppOnboarding{PollInterval: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := onb.Onboard(ctx, cmd); !errors.Is(err, context.Canceled) {
		t.Errorf("Onboard() = %v, want context.Canceled", err)
	}
}
