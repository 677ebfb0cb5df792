package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SerialOptions)(nil)

// SerialOptions configures the byte channel to the CCM module. The agent
// talks to the module either over a real UART (Device) or, for development
// against ccm-sim, over a TCP endpoint (Addr). Exactly one of the two must
// be set.
type SerialOptions struct {
	// Device is the serial device path, e.g. /dev/ttyUSB0.
	Device string `json:"device" mapstructure:"device"`

	// BaudRate for the serial device.
	BaudRate int `json:"baud-rate" mapstructure:"baud-rate"`

	// Addr is a host:port of an AT endpoint (ccm-sim) used instead of a
	// serial device.
	Addr string `json:"addr" mapstructure:"addr"`

	// ResponseTimeout is the uniform per-command reply timeout.
	ResponseTimeout time.Duration `json:"response-timeout" mapstructure:"response-timeout"`
}

// NewSerialOptions creates a SerialOptions object with default parameters.
// The 120s response timeout matches the module's worst-case command latency
// (cloud connect during poor coverage).
func NewSerialOptions() *SerialOptions {
	return &SerialOptions{
		Device:          "",
		BaudRate:        115200,
		Addr:            "",
		ResponseTimeout: 120 * time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *SerialOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.Device == "" && o.Addr == "" {
		errors = append(errors, fmt.Errorf("one of serial.device or serial.addr is required"))
	}
	if o.Device != "" && o.Addr != "" {
		errors = append(errors, fmt.Errorf("serial.device and serial.addr are mutually exclusive"))
	}
	if o.Addr != "" {
		if err := ValidateAddress(o.Addr); err != nil {
			errors = append(errors, err)
		}
	}
	if o.BaudRate <= 0 {
		errors = append(errors, fmt.Errorf("serial.baud-rate must be positive"))
	}
	if o.ResponseTimeout <= 0 {
		errors = append(errors, fmt.Errorf("serial.response-timeout must be positive"))
	}

	return errors
}

// AddFlags adds flags for the module channel to the specified FlagSet.
func (o *SerialOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Device, "serial.device", o.Device, "Serial device connected to the CCM module (e.g. /dev/ttyUSB0).")
	fs.IntVar(&o.BaudRate, "serial.baud-rate", o.BaudRate, "Baud rate of the serial device.")
	fs.StringVar(&o.Addr, "serial.addr", o.Addr, "TCP address of an AT endpoint (ccm-sim), used instead of a serial device.")
	fs.DurationVar(&o.ResponseTimeout, "serial.response-timeout", o.ResponseTimeout, "Maximum wait for a reply to a single AT command.")
}
