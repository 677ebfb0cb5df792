package app

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gosuri/uitable"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ccmlink-io/ccmlink/pkg/log"
)

const configFlagName = "config"

func addConfigFlag(name string, fs *pflag.FlagSet) {
	fs.String(configFlagName, "", "Path to the configuration file. Flags override file values.")

	viper.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(name), "-", "_"))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadConfig merges the config file (if given) and environment into the flag
// set. Explicitly set flags win. The file is watched afterwards; changes are
// logged but take effect only for components that re-read their options.
func loadConfig(fs *pflag.FlagSet) error {
	if err := viper.BindPFlags(fs); err != nil {
		return err
	}

	cfgFile, _ := fs.GetString(configFlagName)
	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}
	log.Info("Loaded configuration file", "file", viper.ConfigFileUsed())

	// Propagate file/env values into flags that were not set on the command
	// line, so the option structs bound to those flags pick them up.
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || !viper.IsSet(f.Name) {
			return
		}
		if err := fs.Set(f.Name, fmt.Sprintf("%v", viper.Get(f.Name))); err != nil {
			bindErr = fmt.Errorf("failed to apply config value for --%s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, restart to apply", "file", e.Name)
	})
	viper.WatchConfig()
	return nil
}

// printFlags logs the effective flag values as a table at debug level.
func printFlags(fs *pflag.FlagSet) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("FLAG", "VALUE")
	fs.VisitAll(func(f *pflag.Flag) {
		value := f.Value.String()
		if isSensitiveFlag(f.Name) && value != "" {
			value = "<redacted>"
		}
		table.AddRow("--"+f.Name, value)
	})
	log.Debug("Effective configuration:\n" + table.String())
}

func isSensitiveFlag(name string) bool {
	return strings.Contains(name, "passphrase") || strings.Contains(name, "password")
}
