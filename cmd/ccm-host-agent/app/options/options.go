package options

import (
	"github.com/spf13/pflag"

	"github.com/ccmlink-io/ccmlink/internal/hostagent"
	"github.com/ccmlink-io/ccmlink/pkg/app"
	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// AgentOptions is the full option tree of ccm-host-agent.
type AgentOptions struct {
	SerialOptions    *options.SerialOptions    `json:"serial" mapstructure:"serial"`
	ProvisionOptions *options.ProvisionOptions `json:"provision" mapstructure:"provision"`
	InterruptOptions *options.InterruptOptions `json:"interrupt" mapstructure:"interrupt"`
	HttpOptions      *options.HttpOptions      `json:"http" mapstructure:"http"`
	Log              *log.Options              `json:"log" mapstructure:"log"`
}

var _ app.CliOptions = (*AgentOptions)(nil)

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		SerialOptions:    options.NewSerialOptions(),
		ProvisionOptions: options.NewProvisionOptions(),
		InterruptOptions: options.NewInterruptOptions(),
		HttpOptions:      options.NewHttpOptions(),
		Log:              log.NewOptions(),
	}
}

func (o *AgentOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.SerialOptions.AddFlags(fs)
	o.ProvisionOptions.AddFlags(fs)
	o.InterruptOptions.AddFlags(fs)
	o.HttpOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

func (o *AgentOptions) Validate() []error {
	errs := []error{}
	errs = append(errs, o.SerialOptions.Validate()...)
	errs = append(errs, o.ProvisionOptions.Validate()...)
	errs = append(errs, o.InterruptOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errs
}

func (o *AgentOptions) Config() (*hostagent.Config, error) {
	return &hostagent.Config{
		SerialOptions:    o.SerialOptions,
		ProvisionOptions: o.ProvisionOptions,
		InterruptOptions: o.InterruptOptions,
		HttpOptions:      o.HttpOptions,
	}, nil
}
