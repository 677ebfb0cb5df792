package app

import (
	"fmt"

	"github.com/ccmlink-io/ccmlink/cmd/ccm-host-agent/app/options"
	"github.com/ccmlink-io/ccmlink/pkg/app"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

const (
	commandName = "ccm-host-agent"
	commandDesc = `The CCM host agent drives a serial-attached cloud connectivity module:
it provisions the module's Wi-Fi and cloud connection once at startup, then
routes the module's event notifications (messages, OTA lifecycle, module
restarts) for as long as it runs.`
)

func NewApp() *app.App {
	opts := options.NewAgentOptions()
	application := app.NewApp(
		commandName,
		"Launch the CCM host agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		ctx := app.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
