// Package flagx layers configuration sources on top of viper: defaults
// registered on the viper instance, then an optional config file named by
// the --config flag, then environment variables, then flags the user set
// explicitly.
package flagx

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFlag is the name of the flag that points at a config file.
const ConfigFlag = "config"

// AddConfigFlag registers -c/--config on fs.
func AddConfigFlag(fs *pflag.FlagSet) {
	fs.StringP(ConfigFlag, "c", "", "path to config file (json, yaml or toml)")
}

// Key maps a flag name such as "push-delay" to its config key "push_delay".
func Key(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// ConfigFile returns the value of --config, or "" when fs has no such flag.
func ConfigFile(fs *pflag.FlagSet) string {
	if fs == nil {
		return ""
	}
	f := fs.Lookup(ConfigFlag)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// Load resolves every source into out. Environment variables are named
// <envPrefix>_<KEY>, e.g. DRAFTKEEPER_PUSH_DELAY.
func Load(v *viper.Viper, fs *pflag.FlagSet, envPrefix string, out any) error {
	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == ConfigFlag || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(Key(f.Name), f)
		})
		if bindErr != nil {
			return fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if path := ConfigFile(fs); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
