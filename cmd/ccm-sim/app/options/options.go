package options

import (
	"github.com/spf13/pflag"

	"github.com/ccmlink-io/ccmlink/pkg/app"
	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// SimOptions is the full option tree of ccm-sim.
type SimOptions struct {
	// ListenAddr is where the simulated AT front end accepts the host agent.
	ListenAddr string `json:"listen-addr" mapstructure:"listen-addr"`

	// EnableBridge connects the simulated module to a real MQTT broker so
	// subscriptions and GET1 move actual messages.
	EnableBridge bool `json:"enable-bridge" mapstructure:"enable-bridge"`

	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	Log         *log.Options         `json:"log" mapstructure:"log"`
}

var _ app.CliOptions = (*SimOptions)(nil)

func NewSimOptions() *SimOptions {
	return &SimOptions{
		ListenAddr:  "127.0.0.1:7777",
		MqttOptions: options.NewMqttOptions(),
		Log:         log.NewOptions(),
	}
}

func (o *SimOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.ListenAddr, "listen-addr", o.ListenAddr, "Address the simulated AT front end listens on.")
	fs.BoolVar(&o.EnableBridge, "enable-bridge", o.EnableBridge, "Bridge the simulated module to a real MQTT broker.")
	o.MqttOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

func (o *SimOptions) Validate() []error {
	errs := []error{}
	if err := options.ValidateAddress(o.ListenAddr); err != nil {
		errs = append(errs, err)
	}
	if o.EnableBridge {
		errs = append(errs, o.MqttOptions.Validate()...)
	}
	errs = append(errs, o.Log.Validate()...)
	return errs
}
