package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options holds logger configuration.
type Options struct {
	// Name is an optional logger name added to every entry.
	Name string `json:"name,omitempty" mapstructure:"name"`

	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `json:"level,omitempty" mapstructure:"level"`

	// Format selects the output encoding, either "json" or "console".
	Format string `json:"format,omitempty" mapstructure:"format"`

	// EnableColor colorizes level names in console format.
	EnableColor bool `json:"enable-color,omitempty" mapstructure:"enable-color"`

	// DisableCaller drops the file:line annotation.
	DisableCaller bool `json:"disable-caller,omitempty" mapstructure:"disable-caller"`

	// CallerSkip adjusts the number of frames skipped when resolving the
	// caller. The default of 2 is correct for the package-level functions.
	CallerSkip int `json:"caller-skip,omitempty" mapstructure:"caller-skip"`

	// OutputPaths lists sinks; "stdout" and "stderr" are recognized.
	OutputPaths []string `json:"output-paths,omitempty" mapstructure:"output-paths"`
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
		CallerSkip:  2,
		OutputPaths: []string{"stdout"},
	}
}

// Validate checks option values.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	switch o.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", o.Format))
	}
	return errs
}

// AddFlags binds command-line flags to the Options fields.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "log.name", o.Name, "An optional name for the logger.")
	fs.StringVar(&o.Level, "log.level", o.Level, "The minimum log level to output ('debug', 'info', 'warn', 'error').")
	fs.StringVar(&o.Format, "log.format", o.Format, "The log output format ('json' or 'console').")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Enable colorized output for the console format.")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Disable the caller field in logs (file and line number).")
	fs.IntVar(&o.CallerSkip, "log.caller-skip", o.CallerSkip, "The number of caller frames to skip.")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "A list of log output paths (e.g., 'stdout', '/var/log/ccmlink.log').")
}
