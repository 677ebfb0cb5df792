package hostagent

import (
	"fmt"

	"github.com/ccmlink-io/ccmlink/internal/hostagent/events"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/hal"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/interrupt"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/provision"
	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// Config collects the validated options the agent is built from.
type Config struct {
	SerialOptions    *options.SerialOptions
	ProvisionOptions *options.ProvisionOptions
	InterruptOptions *options.InterruptOptions
	HttpOptions      *options.HttpOptions
}

// NewAgent wires the transport, engine, interrupt source, provisioner and
// event machine into a runnable Agent.
func (cfg *Config) NewAgent() (*Agent, error) {
	transport, err := cfg.openTransport()
	if err != nil {
		return nil, err
	}
	engine := at.NewEngine(transport, cfg.SerialOptions.ResponseTimeout)

	flag := interrupt.NewFlag()
	systemHAL := hal.New()

	return &Agent{
		flag:        flag,
		source:      cfg.newInterruptSource(),
		provisioner: provision.NewProvisioner(cfg.ProvisionOptions, engine),
		machine:     events.NewMachine(engine, systemHAL, flag),
		httpOptions: cfg.HttpOptions,
	}, nil
}

func (cfg *Config) openTransport() (at.Transport, error) {
	if cfg.SerialOptions.Device != "" {
		return at.OpenSerial(cfg.SerialOptions.Device, cfg.SerialOptions.BaudRate)
	}
	if cfg.SerialOptions.Addr != "" {
		return at.DialTCP(cfg.SerialOptions.Addr)
	}
	return nil, fmt.Errorf("no module channel configured")
}

func (cfg *Config) newInterruptSource() interrupt.Source {
	if cfg.InterruptOptions.GPIOPath != "" {
		return &interrupt.SysfsGPIO{
			Path:     cfg.InterruptOptions.GPIOPath,
			Interval: cfg.InterruptOptions.GPIOPollInterval,
		}
	}
	return &interrupt.Ticker{Interval: cfg.InterruptOptions.TickInterval}
}
