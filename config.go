package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "metatable"
	configFileType = "yaml"
	envPrefix      = "METATABLE"

	cfgKeySchema             = "schema"
	cfgKeyClass              = "class"
	cfgKeyOffsetType         = "offset_type"
	cfgKeyCompression        = "compression"
	cfgKeyNativeInt64        = "native_int64"
	cfgKeyNativeInt64Storage = "native_int64_storage"
	cfgKeyLogLevel           = "log_level"
)

// flag name for each config key a command may override
var flagKeys = map[string]string{
	cfgKeySchema:      "schema",
	cfgKeyClass:       "class",
	cfgKeyOffsetType:  "offset-type",
	cfgKeyCompression: "compression",
	cfgKeyLogLevel:    "log-level",
}

func newConfig() *viper.Viper {
	v := viper.New()

	v.SetDefault(cfgKeyOffsetType, "UINT32")
	v.SetDefault(cfgKeyCompression, "none")
	v.SetDefault(cfgKeyNativeInt64, true)
	v.SetDefault(cfgKeyNativeInt64Storage, true)
	v.SetDefault(cfgKeyLogLevel, "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// loadConfig reads metatable.yaml (or --config) and binds the flags of cmd over
// it. A missing default config file is not an error.
func (a *app) loadConfig(cmd *cobra.Command) error {

	v := a.config

	if a.configFile != "" {
		v.SetConfigFile(a.configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}
