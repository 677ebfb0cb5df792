package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*InterruptOptions)(nil)

// InterruptOptions configures how the agent observes the module's event
// interrupt line. On real hardware the line is wired to a GPIO exposed
// through sysfs; without one the agent falls back to polling on a timer.
type InterruptOptions struct {
	// GPIOPath is the sysfs value file of the interrupt line, e.g.
	// /sys/class/gpio/gpio17/value. Empty selects the ticker fallback.
	GPIOPath string `json:"gpio-path" mapstructure:"gpio-path"`

	// GPIOPollInterval is how often the GPIO value file is sampled.
	GPIOPollInterval time.Duration `json:"gpio-poll-interval" mapstructure:"gpio-poll-interval"`

	// TickInterval drives the fallback source when no GPIO is configured.
	TickInterval time.Duration `json:"tick-interval" mapstructure:"tick-interval"`
}

// NewInterruptOptions creates an InterruptOptions object with default
// parameters.
func NewInterruptOptions() *InterruptOptions {
	return &InterruptOptions{
		GPIOPollInterval: 50 * time.Millisecond,
		TickInterval:     time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *InterruptOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.GPIOPath != "" && o.GPIOPollInterval <= 0 {
		errors = append(errors, fmt.Errorf("interrupt.gpio-poll-interval must be positive"))
	}
	if o.GPIOPath == "" && o.TickInterval <= 0 {
		errors = append(errors, fmt.Errorf("interrupt.tick-interval must be positive"))
	}

	return errors
}

// AddFlags adds flags for the interrupt source to the specified FlagSet.
func (o *InterruptOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.GPIOPath, "interrupt.gpio-path", o.GPIOPath, "Sysfs GPIO value file wired to the module's event line.")
	fs.DurationVar(&o.GPIOPollInterval, "interrupt.gpio-poll-interval", o.GPIOPollInterval, "Sampling interval for the GPIO value file.")
	fs.DurationVar(&o.TickInterval, "interrupt.tick-interval", o.TickInterval, "Polling interval of the fallback source when no GPIO is wired.")
}
