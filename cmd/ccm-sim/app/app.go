package app

import (
	"fmt"

	"github.com/ccmlink-io/ccmlink/cmd/ccm-sim/app/options"
	"github.com/ccmlink-io/ccmlink/internal/ccmsim"
	"github.com/ccmlink-io/ccmlink/pkg/app"
	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/mqtt"
)

const (
	commandName = "ccm-sim"
	commandDesc = `ccm-sim simulates the CCM module's AT front end on a TCP listener so the
host agent can be developed and tested without hardware. With the bridge
enabled, subscriptions and message retrieval move real messages through an
MQTT broker.`
)

func NewApp() *app.App {
	opts := options.NewSimOptions()
	application := app.NewApp(
		commandName,
		"Launch the CCM module simulator",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.SimOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		ctx := app.SetupSignalContext()

		var bridge mqtt.Client
		if opts.EnableBridge {
			client, err := mqtt.NewClient(opts.MqttOptions.ToClientConfig())
			if err != nil {
				return fmt.Errorf("failed to create mqtt client: %w", err)
			}
			if err := client.Start(ctx); err != nil {
				return fmt.Errorf("failed to start mqtt client: %w", err)
			}
			defer client.Disconnect(ctx)
			bridge = client
		}

		srv, err := ccmsim.NewServer(opts.ListenAddr, ccmsim.NewModule(bridge))
		if err != nil {
			return fmt.Errorf("failed to start simulator: %w", err)
		}
		return srv.Serve(ctx)
	}
}
