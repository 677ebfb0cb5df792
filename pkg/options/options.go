package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// IOptions is implemented by every option group so the app bootstrap can
// treat them uniformly.
type IOptions interface {
	// Validate is used to parse and validate the parameters entered by the
	// user at the command line when the program starts.
	Validate() []error

	// AddFlags adds the group's flags to the specified FlagSet.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a host:port listen address.
func ValidateAddress(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}
