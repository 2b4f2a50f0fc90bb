package util

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the inspected environment variables, so batch-size is read from STATSD_BATCH_SIZE.
const EnvPrefix = "STATSD"

// NewViper returns a viper reading overrides from STATSD_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetTypeByDefaultValue(true)
	v.AutomaticEnv()
	return v
}

// BindFlags makes every flag of fs, set or not, visible through v under the flag name.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(flag *pflag.Flag) {
		if err != nil {
			return
		}
		if bindErr := v.BindPFlag(flag.Name, flag); bindErr != nil {
			err = fmt.Errorf("failed to bind flag %s: %v", flag.Name, bindErr)
		}
	})
	return err
}

// ReadConfigFile merges the file at path into v. An empty path is a no-op.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %v", path, err)
	}
	return nil
}
